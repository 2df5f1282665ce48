package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/fras/internal/database"
)

// FaceFeatureRepository provides PostgreSQL-backed descriptor storage
type FaceFeatureRepository struct {
	pool *Pool
}

// NewFaceFeatureRepository creates a new face feature repository
func NewFaceFeatureRepository(pool *Pool) *FaceFeatureRepository {
	return &FaceFeatureRepository{pool: pool}
}

// EnsureSchema applies pending migrations
func (r *FaceFeatureRepository) EnsureSchema(ctx context.Context) error {
	if err := r.pool.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Append inserts a new record and returns its id
func (r *FaceFeatureRepository) Append(ctx context.Context, label string, d database.Descriptor) (int64, error) {
	var id int64
	err := r.pool.db.QueryRowContext(ctx,
		"INSERT INTO face_features (name, descriptor) VALUES ($1, $2) RETURNING id",
		label, database.EncodeDescriptor(d),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert descriptor: %w", err)
	}
	return id, nil
}

// DeleteByLabel removes every record whose name equals label
func (r *FaceFeatureRepository) DeleteByLabel(ctx context.Context, label string) (int64, error) {
	res, err := r.pool.db.ExecContext(ctx, "DELETE FROM face_features WHERE name = $1", label)
	if err != nil {
		return 0, fmt.Errorf("delete descriptors: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted count: %w", err)
	}
	return n, nil
}

// ScanAll returns every record ordered by id
func (r *FaceFeatureRepository) ScanAll(ctx context.Context) ([]database.Record, error) {
	rows, err := r.pool.db.QueryContext(ctx, "SELECT id, name, descriptor FROM face_features ORDER BY id")
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
			return nil, fmt.Errorf("scan descriptor row: %w", err)
		}
		if rec.Descriptor, err = database.DecodeDescriptor(blob); err != nil {
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
func (r *FaceFeatureRepository) Labels(ctx context.Context) ([]database.LabelCount, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT name, COUNT(*) FROM face_features GROUP BY name ORDER BY MIN(id)")
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
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
func (r *FaceFeatureRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM face_features").Scan(&n); err != nil {
		return 0, fmt.Errorf("count descriptors: %w", err)
	}
	return n, nil
}

// Close closes the underlying pool
func (r *FaceFeatureRepository) Close() error {
	return r.pool.Close()
}

var (
	_ database.Store       = (*FaceFeatureRepository)(nil)
	_ database.LabelLister = (*FaceFeatureRepository)(nil)
)
