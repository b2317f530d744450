package testhelpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// ServerPush is a push served by PushlogServer
type ServerPush struct {
	ID    int64
	User  string
	When  int64
	Nodes []string
}

// PushlogServer is a fake pushlog endpoint speaking the fetch protocol
type PushlogServer struct {
	*httptest.Server

	mu       sync.Mutex
	pushes   []ServerPush
	failure  string
	raw      string
	requests []int64
	tokens   []string
}

// NewPushlogServer starts a server that is closed when the test ends
func NewPushlogServer(t *testing.T) *PushlogServer {
	t.Helper()
	s := &PushlogServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddPush appends a push to the served log
func (s *PushlogServer) AddPush(id int64, user string, when int64, nodes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, ServerPush{ID: id, User: user, When: when, Nodes: nodes})
}

// Fail makes every subsequent request report a remote failure with message
func (s *PushlogServer) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = message
}

// SetRaw makes every subsequent request return body verbatim
func (s *PushlogServer) SetRaw(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = body
}

// Requests returns the firstpush value of each request received
func (s *PushlogServer) Requests() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.requests...)
}

// Tokens returns the Authorization header of each request received
func (s *PushlogServer) Tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tokens...)
}

func (s *PushlogServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Query().Get("cmd") != "pushlog" {
		http.Error(w, "unknown command", http.StatusBadRequest)
		return
	}
	first, err := strconv.ParseInt(r.URL.Query().Get("firstpush"), 10, 64)
	if err != nil {
		http.Error(w, "bad firstpush", http.StatusBadRequest)
		return
	}
	s.requests = append(s.requests, first)
	s.tokens = append(s.tokens, r.Header.Get("Authorization"))

	w.Header().Set("Content-Type", "text/plain")
	if s.raw != "" {
		fmt.Fprint(w, s.raw)
		return
	}
	if s.failure != "" {
		fmt.Fprintf(w, "0\n%s\n", s.failure)
		return
	}

	fmt.Fprintln(w, "1")
	for _, p := range s.pushes {
		if p.ID < first {
			continue
		}
		fmt.Fprintf(w, "%d %s %d %s\n", p.ID, p.User, p.When, strings.Join(p.Nodes, " "))
	}
}
