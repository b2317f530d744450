package store

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"time"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// Push is one push event recorded by a tree's pushlog
type Push struct {
	Tree  string
	ID    int64
	User  string
	When  time.Time
	Nodes []string
	// Head is the tip of the push; the last node when empty
	Head string
}

// HeadNode returns the push head
func (p Push) HeadNode() string {
	if p.Head != "" {
		return p.Head
	}
	if len(p.Nodes) == 0 {
		return ""
	}
	return p.Nodes[len(p.Nodes)-1]
}

// PushRef is a stored push as seen from one of its changesets
type PushRef struct {
	Tree string
	ID   int64
	When time.Time
	User string
	Head string
}

// PushHead pairs a push id with its head changeset
type PushHead struct {
	ID   int64
	Head string
}

// LastPushID returns the highest stored push id for tree
func (s *Store) LastPushID(ctx context.Context, tree string) (int64, bool, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(pushes.push_id)
		FROM pushes JOIN trees ON pushes.tree_id = trees.id
		WHERE trees.name = ?
	`, tree).Scan(&id)
	if err != nil {
		return 0, false, pushlogerrors.NewStorageError("last push id", err)
	}
	return id.Int64, id.Valid, nil
}

// AddPushes stores pushes for tree in one transaction.
// A push whose (tree, id) is already stored is left untouched.
func (s *Store) AddPushes(ctx context.Context, tree string, pushes []Push) error {
	if len(pushes) == 0 {
		return nil
	}

	return s.withTx(ctx, "add pushes", func(tx *sql.Tx) error {
		treeID, err := ensureTree(ctx, tx, tree)
		if err != nil {
			return err
		}

		for _, push := range pushes {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO pushes (tree_id, push_id, user, time, head_changeset)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT DO NOTHING
			`, treeID, push.ID, push.User, push.When.Unix(), push.HeadNode())
			if err != nil {
				return err
			}
			inserted, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if inserted == 0 {
				continue
			}

			for i, node := range push.Nodes {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO changeset_pushes (changeset, tree_id, push_id, idx)
					VALUES (?, ?, ?, ?)
				`, node, treeID, push.ID, i)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func ensureTree(ctx context.Context, tx *sql.Tx, tree string) (int64, error) {
	_, err := tx.ExecContext(ctx, `INSERT INTO trees (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, tree)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM trees WHERE name = ?`, tree).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// PushesForChangeset returns every push containing node, grouped by tree in
// the order trees were first synced, ascending by push id within a tree.
func (s *Store) PushesForChangeset(ctx context.Context, node string) ([]PushRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trees.name, pushes.push_id, pushes.time, pushes.user, pushes.head_changeset
		FROM changeset_pushes
		JOIN pushes ON pushes.tree_id = changeset_pushes.tree_id AND pushes.push_id = changeset_pushes.push_id
		JOIN trees ON trees.id = pushes.tree_id
		WHERE changeset_pushes.changeset = ?
		ORDER BY trees.id ASC, pushes.push_id ASC
	`, node)
	if err != nil {
		return nil, pushlogerrors.NewStorageError("pushes for changeset", err)
	}
	defer rows.Close()

	refs := []PushRef{}
	for rows.Next() {
		var ref PushRef
		var when int64
		if err := rows.Scan(&ref.Tree, &ref.ID, &when, &ref.User, &ref.Head); err != nil {
			return nil, pushlogerrors.NewStorageError("pushes for changeset", err)
		}
		ref.When = time.Unix(when, 0).UTC()
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, pushlogerrors.NewStorageError("pushes for changeset", err)
	}
	return refs, nil
}

// TreePushHeads streams (push id, head) for tree in ascending push id order.
// The cursor stays open until iteration stops.
func (s *Store) TreePushHeads(ctx context.Context, tree string) iter.Seq2[PushHead, error] {
	return func(yield func(PushHead, error) bool) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT pushes.push_id, pushes.head_changeset
			FROM pushes JOIN trees ON pushes.tree_id = trees.id
			WHERE trees.name = ?
			ORDER BY pushes.push_id ASC
		`, tree)
		if err != nil {
			yield(PushHead{}, pushlogerrors.NewStorageError("tree push heads", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var head PushHead
			if err := rows.Scan(&head.ID, &head.Head); err != nil {
				yield(PushHead{}, pushlogerrors.NewStorageError("tree push heads", err))
				return
			}
			if !yield(head, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(PushHead{}, pushlogerrors.NewStorageError("tree push heads", err))
		}
	}
}

// IsPushHead reports whether node is the head of a stored push, on tree when tree is not empty
func (s *Store) IsPushHead(ctx context.Context, node, tree string) (bool, error) {
	query := `SELECT 1 FROM pushes WHERE head_changeset = ? LIMIT 1`
	args := []any{node}
	if tree != "" {
		query = `
			SELECT 1 FROM pushes JOIN trees ON pushes.tree_id = trees.id
			WHERE pushes.head_changeset = ? AND trees.name = ? LIMIT 1`
		args = append(args, tree)
	}

	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, pushlogerrors.NewStorageError("is push head", err)
	}
	return true, nil
}

// WipePushlog removes every push and push membership row
func (s *Store) WipePushlog(ctx context.Context) error {
	return s.withTx(ctx, "wipe pushlog", func(tx *sql.Tx) error {
		for _, table := range []string{"changeset_pushes", "pushes", "trees"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		// Restart discovery order
		_, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'trees'`)
		return err
	})
}
