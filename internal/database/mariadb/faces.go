package mariadb

import (
	"context"
	"fmt"

	"github.com/kozaktomas/fras/internal/database"
)

// name is a byte string: comparisons are exact, case-sensitive and keep
// trailing spaces, unlike PAD SPACE text collations.
const createTable = `
	CREATE TABLE IF NOT EXISTS face_features (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name BLOB NOT NULL,
		descriptor BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_face_features_name (name(191))
	) ENGINE=InnoDB
`

// maxLabelBytes is the capacity of a BLOB column
const maxLabelBytes = 65535

// FaceFeatureRepository stores descriptors in the face_features table.
type FaceFeatureRepository struct {
	pool *Pool
}

// NewFaceFeatureRepository creates a repository on pool.
func NewFaceFeatureRepository(pool *Pool) *FaceFeatureRepository {
	return &FaceFeatureRepository{pool: pool}
}

// EnsureSchema creates the table when missing.
func (r *FaceFeatureRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create face_features table: %w", err)
	}
	return nil
}

func (r *FaceFeatureRepository) Append(ctx context.Context, label string, d database.Descriptor) (int64, error) {
	if len(label) > maxLabelBytes {
		return 0, fmt.Errorf("label of %d bytes exceeds %d", len(label), maxLabelBytes)
	}
	res, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO face_features (name, descriptor) VALUES (?, ?)`,
		label, database.EncodeDescriptor(d))
	if err != nil {
		return 0, fmt.Errorf("insert descriptor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}

func (r *FaceFeatureRepository) DeleteByLabel(ctx context.Context, label string) (int64, error) {
	res, err := r.pool.db.ExecContext(ctx, `DELETE FROM face_features WHERE name = ?`, label)
	if err != nil {
		return 0, fmt.Errorf("delete descriptors: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted count: %w", err)
	}
	return n, nil
}

func (r *FaceFeatureRepository) ScanAll(ctx context.Context) ([]database.Record, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT id, name, descriptor FROM face_features ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query descriptors: %w", err)
	}
	defer rows.Close()

	var records []database.Record
	for rows.Next() {
		var (
			rec  database.Record
			blob []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Label, &blob); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if rec.Descriptor, err = database.DecodeDescriptor(blob); err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Labels returns label counts in first-enrollment order.
func (r *FaceFeatureRepository) Labels(ctx context.Context) ([]database.LabelCount, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT name, COUNT(*) FROM face_features GROUP BY name ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var labels []database.LabelCount
	for rows.Next() {
		var lc database.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		labels = append(labels, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return labels, nil
}

func (r *FaceFeatureRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM face_features`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count descriptors: %w", err)
	}
	return n, nil
}

// Close closes the underlying pool.
func (r *FaceFeatureRepository) Close() error {
	return r.pool.Close()
}

var (
	_ database.Store       = (*FaceFeatureRepository)(nil)
	_ database.LabelLister = (*FaceFeatureRepository)(nil)
)
