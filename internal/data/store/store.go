// Package store is the SQLite snapshot backend. It satisfies the same
// freshness contract as the file cache but loads large graphs without
// parsing one big JSON document.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"lattice/internal/core/errors"
	"lattice/internal/data/cache"
	"lattice/internal/graph"
)

const (
	driverName    = "sqlite"
	schemaVersion = 1
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, errors.Newf(errors.CodeValidationError, "store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, errors.CodeIO, "create store directory "+dir)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "open sqlite store "+cleanPath)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CodeIO, "ping sqlite store "+cleanPath)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			metadata TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			relationship TEXT NOT NULL,
			weight REAL NOT NULL,
			origin TEXT NOT NULL,
			PRIMARY KEY (from_id, to_id, relationship)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, errors.CodeIO, "initialize store schema")
		}
	}

	var stored string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`,
			fmt.Sprintf("%d", schemaVersion))
		if err != nil {
			return errors.Wrap(err, errors.CodeIO, "record store schema version")
		}
	case err != nil:
		return errors.Wrap(err, errors.CodeIO, "read store schema version")
	case stored != fmt.Sprintf("%d", schemaVersion):
		return errors.Newf(errors.CodeCacheUnreadable,
			"store schema version %s, want %d", stored, schemaVersion)
	}
	return nil
}

// Save replaces the stored snapshot in one transaction.
func (s *Store) Save(g *graph.Graph, contentHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.CodeIO, "begin store transaction")
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM nodes`, `DELETE FROM edges`} {
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Wrap(err, errors.CodeIO, "clear store tables")
		}
	}

	insertNode, err := tx.Prepare(`INSERT INTO nodes (id, title, category, kind, source, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, errors.CodeIO, "prepare node insert")
	}
	defer insertNode.Close()

	for _, n := range g.Nodes() {
		var metadata interface{}
		if len(n.Metadata) > 0 {
			raw, marshalErr := json.Marshal(n.Metadata)
			if marshalErr != nil {
				return errors.Wrap(marshalErr, errors.CodeInternal, "encode metadata for "+n.ID)
			}
			metadata = string(raw)
		}
		if _, err := insertNode.Exec(n.ID, n.Title, n.Category, string(n.Kind), n.Source, metadata); err != nil {
			return errors.Wrap(err, errors.CodeIO, "insert node "+n.ID)
		}
	}

	insertEdge, err := tx.Prepare(`INSERT INTO edges (from_id, to_id, relationship, weight, origin)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, errors.CodeIO, "prepare edge insert")
	}
	defer insertEdge.Close()

	for _, e := range g.Edges() {
		if _, err := insertEdge.Exec(e.From, e.To, e.Relationship.Name(), e.Weight, string(e.Origin)); err != nil {
			return errors.Wrap(err, errors.CodeIO, "insert edge "+e.String())
		}
	}

	meta := map[string]string{
		"content_hash": contentHash,
		"built_at":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	for key, value := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return errors.Wrap(err, errors.CodeIO, "record store metadata")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeIO, "commit store transaction")
	}
	return nil
}

// ContentHash returns the hash recorded with the stored snapshot, empty when
// nothing has been saved yet.
func (s *Store) ContentHash() (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'content_hash'`).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CodeIO, "read stored content hash")
	}
	return hash, nil
}

// Load rebuilds a graph from the stored rows. An empty store is CACHE_MISS.
func (s *Store) Load() (*graph.Graph, error) {
	hash, err := s.ContentHash()
	if err != nil {
		return nil, err
	}
	if hash == "" {
		return nil, errors.New(errors.CodeCacheMiss, "store holds no snapshot")
	}

	g := graph.New()

	rows, err := s.db.Query(`SELECT id, title, category, kind, source, metadata FROM nodes`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "query nodes")
	}
	defer rows.Close()
	for rows.Next() {
		var n graph.Node
		var kind string
		var metadata sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Category, &kind, &n.Source, &metadata); err != nil {
			return nil, errors.Wrap(err, errors.CodeCacheUnreadable, "scan node row")
		}
		n.Kind = graph.NodeKind(kind)
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &n.Metadata); err != nil {
				return nil, errors.Wrap(err, errors.CodeCacheUnreadable, "decode metadata for "+n.ID)
			}
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheUnreadable, "iterate node rows")
	}

	edgeRows, err := s.db.Query(`SELECT from_id, to_id, relationship, weight, origin FROM edges`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "query edges")
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e graph.Edge
		var rel, origin string
		if err := edgeRows.Scan(&e.From, &e.To, &rel, &e.Weight, &origin); err != nil {
			return nil, errors.Wrap(err, errors.CodeCacheUnreadable, "scan edge row")
		}
		e.Relationship = graph.ParseRelationship(rel)
		e.Origin = graph.Origin(origin)
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCacheUnreadable, "iterate edge rows")
	}

	return g, nil
}

// Fresh reports whether the stored snapshot matches the declared hash.
func (s *Store) Fresh(declared string) (bool, error) {
	stored, err := s.ContentHash()
	if err != nil {
		return false, err
	}
	return cache.Fresh(declared, stored), nil
}
