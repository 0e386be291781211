package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sceneforge/engine/internal/config"
	"github.com/sceneforge/engine/internal/world"
	"go.uber.org/zap"
)

// PostgresStore keeps snapshots as JSONB rows in the snapshots table.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewPostgresStore connects, pings and applies pending migrations.
func NewPostgresStore(ctx context.Context, cfg config.SnapshotConfig, log *zap.Logger) (*PostgresStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := RunMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, log: log}, nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, st *world.ProjectState) error {
	if err := checkName(name); err != nil {
		return err
	}
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (name, entities, body, saved_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE SET entities = EXCLUDED.entities, body = EXCLUDED.body, saved_at = NOW()`,
		name, len(st.Entities), body,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	s.log.Info("snapshot saved", zap.String("name", name), zap.Int("entities", len(st.Entities)))
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) (*world.ProjectState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM snapshots WHERE name = $1`, name,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load snapshot %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	var st world.ProjectState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &st, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, entities, saved_at FROM snapshots ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var entities int32
		if err := rows.Scan(&info.Name, &entities, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		info.Entities = int(entities)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
