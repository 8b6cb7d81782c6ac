// Package postgres provides a PostgreSQL-backed store.Store using pgx.
//
// Tables are created on connect if they do not exist:
//
//	nodes    (id PK, name, type, voltage_kv, x, y)
//	segments (id PK, circuit_id, from_node FK, to_node FK, length_m, conductor_type, capacity_amp)
//	closure  (ancestor FK, descendant FK, depth, PK(ancestor, descendant))
//
// SaveNetwork replaces all rows inside one transaction. Closure rows are
// inserted with ON CONFLICT DO NOTHING on the (ancestor, descendant) key,
// giving the idempotent dedup semantics the sink contract requires.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/entity"
	"github.com/voltlab/gridclosure/pkg/errors"
	"github.com/voltlab/gridclosure/pkg/store"
)

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, verifies connectivity, and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id         BIGINT PRIMARY KEY,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL,
			voltage_kv DOUBLE PRECISION NOT NULL,
			x          DOUBLE PRECISION NOT NULL,
			y          DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS segments (
			id             BIGINT PRIMARY KEY,
			circuit_id     TEXT NOT NULL,
			from_node      BIGINT NOT NULL REFERENCES nodes(id),
			to_node        BIGINT NOT NULL REFERENCES nodes(id),
			length_m       DOUBLE PRECISION NOT NULL,
			conductor_type BIGINT NOT NULL,
			capacity_amp   BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS closure (
			ancestor   BIGINT NOT NULL REFERENCES nodes(id),
			descendant BIGINT NOT NULL REFERENCES nodes(id),
			depth      BIGINT NOT NULL,
			PRIMARY KEY (ancestor, descendant)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_closure_ancestor ON closure(ancestor)`,
		`CREATE INDEX IF NOT EXISTS idx_closure_descendant ON closure(descendant)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_from_node ON segments(from_node)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_to_node ON segments(to_node)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveNetwork implements store.Store.
func (s *Store) SaveNetwork(ctx context.Context, nodes []entity.Node, segments []entity.Segment, entries []closure.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	// Regenerated wholesale every run; children first for the FKs.
	for _, table := range []string{"closure", "segments", "nodes"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "clear %s", table)
		}
	}

	batch := &pgx.Batch{}
	for _, n := range nodes {
		batch.Queue(
			`INSERT INTO nodes (id, name, type, voltage_kv, x, y) VALUES ($1, $2, $3, $4, $5, $6)`,
			n.ID, n.Name, n.Type, n.VoltageKV, n.X, n.Y,
		)
	}
	for _, seg := range segments {
		batch.Queue(
			`INSERT INTO segments (id, circuit_id, from_node, to_node, length_m, conductor_type, capacity_amp)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			seg.ID, seg.CircuitID, seg.From, seg.To, seg.LengthM, seg.ConductorType, seg.CapacityAmp,
		)
	}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO closure (ancestor, descendant, depth) VALUES ($1, $2, $3)
			 ON CONFLICT (ancestor, descendant) DO NOTHING`,
			e.Ancestor, e.Descendant, e.Depth,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "insert rows")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "commit")
	}
	return nil
}

// Descendants implements store.Store.
func (s *Store) Descendants(ctx context.Context, id int, maxDepth int) ([]store.Relation, error) {
	query := `
		SELECT c.descendant, n.name, n.type, c.depth
		FROM closure c
		JOIN nodes n ON n.id = c.descendant
		WHERE c.ancestor = $1 AND c.depth > 0 AND ($2 <= 0 OR c.depth <= $2)
		ORDER BY c.depth, c.descendant`
	return s.queryRelations(ctx, query, id, maxDepth)
}

// Ancestors implements store.Store.
func (s *Store) Ancestors(ctx context.Context, id int) ([]store.Relation, error) {
	query := `
		SELECT c.ancestor, n.name, n.type, c.depth
		FROM closure c
		JOIN nodes n ON n.id = c.ancestor
		WHERE c.descendant = $1 AND c.depth > 0
		ORDER BY c.depth DESC`
	return s.queryRelations(ctx, query, id)
}

// AtDepth implements store.Store.
func (s *Store) AtDepth(ctx context.Context, id int, depth int) ([]store.Relation, error) {
	query := `
		SELECT c.descendant, n.name, n.type, c.depth
		FROM closure c
		JOIN nodes n ON n.id = c.descendant
		WHERE c.ancestor = $1 AND c.depth = $2 AND c.depth > 0
		ORDER BY c.descendant`
	return s.queryRelations(ctx, query, id, depth)
}

func (s *Store) queryRelations(ctx context.Context, query string, args ...any) ([]store.Relation, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "query closure")
	}
	defer rows.Close()

	var rels []store.Relation
	for rows.Next() {
		var rel store.Relation
		if err := rows.Scan(&rel.NodeID, &rel.Name, &rel.Type, &rel.Depth); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "scan relation")
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "iterate relations")
	}
	return rels, nil
}

// Counts implements store.Store.
func (s *Store) Counts(ctx context.Context) (store.Counts, error) {
	var counts store.Counts
	row := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM nodes),
			(SELECT COUNT(*) FROM segments),
			(SELECT COUNT(*) FROM closure)`)
	if err := row.Scan(&counts.Nodes, &counts.Segments, &counts.ClosureEntries); err != nil {
		return store.Counts{}, errors.Wrap(errors.ErrCodeStore, err, "count rows")
	}
	return counts, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}
