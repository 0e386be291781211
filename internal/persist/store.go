package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sceneforge/engine/internal/config"
	"github.com/sceneforge/engine/internal/world"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load for an unknown snapshot name.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	Name     string
	Entities int
	SavedAt  time.Time
}

// Store keeps named world snapshots. Saving under an existing name
// replaces it.
type Store interface {
	Save(ctx context.Context, name string, st *world.ProjectState) error
	Load(ctx context.Context, name string) (*world.ProjectState, error)
	List(ctx context.Context) ([]SnapshotInfo, error)
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.SnapshotConfig, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Driver {
	case "postgres":
		return NewPostgresStore(ctx, cfg, log)
	case "sqlite":
		return OpenSQLite(cfg.DSN, log)
	case "file", "":
		return NewFileStore(cfg.Dir, log)
	}
	return nil, fmt.Errorf("open snapshot store: unknown driver %q", cfg.Driver)
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	return nil
}
