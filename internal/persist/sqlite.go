package persist

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sceneforge/engine/internal/world"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps snapshots in a local SQLite file, one JSON body per row.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite creates or opens the database at path and applies the schema.
func OpenSQLite(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, st *world.ProjectState) error {
	if err := checkName(name); err != nil {
		return err
	}
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (name, entities, body, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET entities = excluded.entities, body = excluded.body, saved_at = excluded.saved_at`,
		name, len(st.Entities), string(body), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	s.log.Info("snapshot saved", zap.String("name", name), zap.Int("entities", len(st.Entities)))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*world.ProjectState, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM snapshots WHERE name = ?`, name,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load snapshot %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	var st world.ProjectState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &st, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, entities, saved_at FROM snapshots ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var savedAt int64
		if err := rows.Scan(&info.Name, &info.Entities, &savedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		info.SavedAt = time.UnixMilli(savedAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
