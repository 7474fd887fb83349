// Package sqlite implements the property storage layer on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/property-listings/pkg/batch"
	"github.com/Sternrassler/property-listings/pkg/properties"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Compile-time check that DB satisfies properties.Repository.
var _ properties.Repository = (*DB)(nil)

const (
	timeFormat    = time.RFC3339Nano
	selectColumns = `SELECT id, title, description, price, location, created_at FROM properties`
)

// DB is the SQLite-backed property repository.
type DB struct {
	db     *sql.DB
	batch  batch.Config
	logger zerolog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithBatchConfig sets how FindByIDs splits large id sets.
func WithBatchConfig(cfg batch.Config) Option {
	return func(d *DB) {
		d.batch = cfg
	}
}

// WithLogger sets the storage logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *DB) {
		d.logger = logger
	}
}

// New opens a SQLite database at the given path and runs migrations.
func New(ctx context.Context, path string, opts ...Option) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	d := &DB{
		db:     db,
		batch:  batch.DefaultConfig(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close releases the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// ListAllIDs returns every property id in primary key order.
func (d *DB) ListAllIDs(ctx context.Context) ([]int64, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM properties ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query property ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan property id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindByIDs returns the properties whose id is in ids. Unknown ids are
// skipped. Large id sets are fetched in chunks.
func (d *DB) FindByIDs(ctx context.Context, ids []int64) ([]properties.Property, error) {
	return batch.FetchChunked(ctx, ids, d.batch, d.findChunk)
}

func (d *DB) findChunk(ctx context.Context, ids []int64) ([]properties.Property, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := d.db.QueryContext(ctx, selectColumns+` WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	out := make([]properties.Property, 0, len(ids))
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Get returns a property by id.
func (d *DB) Get(ctx context.Context, id int64) (*properties.Property, error) {
	row := d.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, properties.ErrNotFound
	}
	return p, err
}

// Create inserts a property and sets its ID and CreatedAt.
func (d *DB) Create(ctx context.Context, p *properties.Property) error {
	p.CreatedAt = time.Now().UTC()

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO properties (title, description, price, location, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.Title, p.Description, p.Price, p.Location, p.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert property id: %w", err)
	}
	p.ID = id

	d.logger.Debug().Int64("property_id", id).Msg("Property created")
	return nil
}

// Update replaces the mutable fields of a property. CreatedAt is preserved
// and reloaded into p.
func (d *DB) Update(ctx context.Context, p *properties.Property) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE properties SET title = ?, description = ?, price = ?, location = ?
		WHERE id = ?`,
		p.Title, p.Description, p.Price, p.Location, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}

	stored, err := d.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = stored.CreatedAt

	d.logger.Debug().Int64("property_id", p.ID).Msg("Property updated")
	return nil
}

// Delete removes a property.
func (d *DB) Delete(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}

	d.logger.Debug().Int64("property_id", id).Msg("Property deleted")
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(s scanner) (*properties.Property, error) {
	var (
		p         properties.Property
		createdAt string
	)
	if err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Location, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan property: %w", err)
	}

	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	p.CreatedAt = t

	return &p, nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return properties.ErrNotFound
	}
	return nil
}
