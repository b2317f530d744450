package pushlog

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// Record is one push line of a fetch response
type Record struct {
	ID    int64
	User  string
	When  time.Time
	Nodes []string
}

// Head returns the last node of the push
func (r Record) Head() string {
	return r.Nodes[len(r.Nodes)-1]
}

// ParseResponse decodes a fetch protocol response.
//
// The first line is the status: "1" for success. Any other status is a
// failure whose message is on the second line. On success every following
// non-empty line is "<push id> <user> <unix time> <node> [<node> ...]".
func ParseResponse(body []byte) ([]Record, error) {
	lines := strings.Split(string(bytes.TrimRight(body, "\n")), "\n")
	status := strings.TrimSpace(lines[0])

	if status != "1" {
		if len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
			return nil, pushlogerrors.NewRemoteProtocolError("", strings.TrimSpace(lines[1]))
		}
		return nil, pushlogerrors.NewProtocolError("", fmt.Sprintf("unexpected response status %q", status), nil)
	}

	records := make([]Record, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			return nil, pushlogerrors.NewProtocolError("", fmt.Sprintf("malformed record on line %d", i+2), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Record{}, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid push id %q: %w", fields[0], err)
	}
	when, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp %q: %w", fields[2], err)
	}

	return Record{
		ID:    id,
		User:  fields[1],
		When:  time.Unix(when, 0).UTC(),
		Nodes: fields[3:],
	}, nil
}
