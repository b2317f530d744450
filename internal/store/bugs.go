package store

import (
	"context"
	"database/sql"

	pushlogerrors "pushlog.dev/pushlog/internal/errors"
)

// AssociateBugs records that node references each of bugs. Repeating an
// association is a no-op.
func (s *Store) AssociateBugs(ctx context.Context, bugs []int, node string) error {
	if len(bugs) == 0 {
		return nil
	}
	return s.withTx(ctx, "associate bugs", func(tx *sql.Tx) error {
		return associate(ctx, tx, bugs, node)
	})
}

// AssociateBugsBatch records the bugs of many changesets in one transaction
func (s *Store) AssociateBugsBatch(ctx context.Context, bugsByNode map[string][]int) error {
	if len(bugsByNode) == 0 {
		return nil
	}
	return s.withTx(ctx, "associate bugs", func(tx *sql.Tx) error {
		for node, bugs := range bugsByNode {
			if err := associate(ctx, tx, bugs, node); err != nil {
				return err
			}
		}
		return nil
	})
}

func associate(ctx context.Context, tx *sql.Tx, bugs []int, node string) error {
	for _, bug := range bugs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO changeset_bugs (changeset, bug) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, node, bug)
		if err != nil {
			return err
		}
	}
	return nil
}

// ChangesetsWithBug returns every changeset associated with bug
func (s *Store) ChangesetsWithBug(ctx context.Context, bug int) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT changeset FROM changeset_bugs WHERE bug = ?`, bug)
	if err != nil {
		return nil, pushlogerrors.NewStorageError("changesets with bug", err)
	}
	defer rows.Close()

	nodes := make(map[string]struct{})
	for rows.Next() {
		var node string
		if err := rows.Scan(&node); err != nil {
			return nil, pushlogerrors.NewStorageError("changesets with bug", err)
		}
		nodes[node] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, pushlogerrors.NewStorageError("changesets with bug", err)
	}
	return nodes, nil
}

// WipeBugs removes every bug association
func (s *Store) WipeBugs(ctx context.Context) error {
	return s.withTx(ctx, "wipe bugs", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM changeset_bugs`)
		return err
	})
}
