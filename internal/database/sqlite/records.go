package sqlite

import (
	"context"
	"fmt"

	"github.com/kozaktomas/fras/internal/database"
)

// Append inserts a new record and returns its id, creating the store file
// and table when needed
func (s *Store) Append(ctx context.Context, label string, d database.Descriptor) (int64, error) {
	db, err := s.open(ctx, true)
	if err != nil {
		return 0, err
	}
	if err := s.createSchema(ctx, db); err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO face_features (name, descriptor) VALUES (?, ?)",
		label, database.EncodeDescriptor(d),
	)
	if err != nil {
		return 0, classify("insert descriptor", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}

// DeleteByLabel removes every record whose name equals label
func (s *Store) DeleteByLabel(ctx context.Context, label string) (int64, error) {
	db, err := s.open(ctx, false)
	if err != nil || db == nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, "DELETE FROM face_features WHERE name = ?", label)
	if err != nil {
		return 0, classify("delete descriptors", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted count: %w", err)
	}
	return n, nil
}

// ScanAll returns every record ordered by id
func (s *Store) ScanAll(ctx context.Context) ([]database.Record, error) {
	db, err := s.open(ctx, false)
	if err != nil || db == nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT id, name, descriptor FROM face_features ORDER BY id")
	if err != nil {
		return nil, classify("query descriptors", err)
	}
	defer rows.Close()

	var records []database.Record
	for rows.Next() {
		var (
			rec  database.Record
			blob []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Label, &blob); err != nil {
			return nil, fmt.Errorf("scan descriptor row: %w", err)
		}
		rec.Descriptor, err = database.DecodeDescriptor(blob)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate descriptors: %w", err)
	}
	return records, nil
}

// Labels returns every label with its record count, in first-enrollment order
func (s *Store) Labels(ctx context.Context) ([]database.LabelCount, error) {
	db, err := s.open(ctx, false)
	if err != nil || db == nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT name, COUNT(*) FROM face_features GROUP BY name ORDER BY MIN(id)")
	if err != nil {
		return nil, classify("query labels", err)
	}
	defer rows.Close()

	var labels []database.LabelCount
	for rows.Next() {
		var lc database.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan label row: %w", err)
		}
		labels = append(labels, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labels: %w", err)
	}
	return labels, nil
}

// Count returns the number of stored records
func (s *Store) Count(ctx context.Context) (int, error) {
	db, err := s.open(ctx, false)
	if err != nil || db == nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM face_features").Scan(&n); err != nil {
		return 0, classify("count descriptors", err)
	}
	return n, nil
}
