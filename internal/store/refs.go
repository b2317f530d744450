package store

import (
	"context"
	"database/sql"
	"errors"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// RemoteRefs returns refs whose name starts with prefix; all refs when prefix is empty
func (s *Store) RemoteRefs(ctx context.Context, prefix string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, changeset FROM remote_refs
		WHERE substr(name, 1, length(?)) = ?
	`, prefix, prefix)
	if err != nil {
		return nil, pushlogerrors.NewStorageError("remote refs", err)
	}
	defer rows.Close()

	refs := make(map[string]string)
	for rows.Next() {
		var name, node string
		if err := rows.Scan(&name, &node); err != nil {
			return nil, pushlogerrors.NewStorageError("remote refs", err)
		}
		refs[name] = node
	}
	if err := rows.Err(); err != nil {
		return nil, pushlogerrors.NewStorageError("remote refs", err)
	}
	return refs, nil
}

// RemoteRef returns the changeset stored for name
func (s *Store) RemoteRef(ctx context.Context, name string) (string, bool, error) {
	var node string
	err := s.db.QueryRowContext(ctx, `SELECT changeset FROM remote_refs WHERE name = ?`, name).Scan(&node)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pushlogerrors.NewStorageError("remote ref", err)
	}
	return node, true, nil
}

// ApplyRefChanges writes set and removes deleted in one transaction
func (s *Store) ApplyRefChanges(ctx context.Context, set map[string]string, deleted []string) error {
	if len(set) == 0 && len(deleted) == 0 {
		return nil
	}
	return s.withTx(ctx, "apply ref changes", func(tx *sql.Tx) error {
		for name, node := range set {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO remote_refs (name, changeset) VALUES (?, ?)
				ON CONFLICT(name) DO UPDATE SET changeset = excluded.changeset
			`, name, node)
			if err != nil {
				return err
			}
		}
		for _, name := range deleted {
			if _, err := tx.ExecContext(ctx, `DELETE FROM remote_refs WHERE name = ?`, name); err != nil {
				return err
			}
		}
		return nil
	})
}
