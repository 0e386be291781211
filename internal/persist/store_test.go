package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sceneforge/engine/internal/component"
	"github.com/sceneforge/engine/internal/config"
	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/world"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New(nil, zaptest.NewLogger(t))
	w.RegisterComponents(component.All()...)
	return w
}

// sampleState builds entity 0 with Position and Tag, entity 1 with Health.
func sampleState(t *testing.T) *world.ProjectState {
	t.Helper()
	w := newTestWorld(t)
	cm := w.Components()
	hero := w.CreateEntity()
	_, err := cm.Add(hero, component.PositionType, 1.5, 2.0)
	require.NoError(t, err)
	_, err = cm.Add(hero, component.TagType, "hero")
	require.NoError(t, err)
	orc := w.CreateEntity()
	_, err = cm.Add(orc, component.HealthType, 80, 100)
	require.NoError(t, err)

	st, err := w.ProjectState()
	require.NoError(t, err)
	return st
}

// assertRestores loads st into a fresh world and checks the sample entities.
func assertRestores(t *testing.T, st *world.ProjectState) {
	t.Helper()
	w := newTestWorld(t)
	require.NoError(t, w.LoadProjectState(st))

	assert.Equal(t, []ecs.EntityID{0, 1}, w.Entities().ActiveEntities().Sorted())
	p, ok := ecs.GetAs(w.Components(), 0, component.PositionType)
	require.True(t, ok)
	assert.Equal(t, 1.5, p.X)
	assert.Equal(t, 2.0, p.Y)
	h, ok := ecs.GetAs(w.Components(), 1, component.HealthType)
	require.True(t, ok)
	assert.Equal(t, 80, h.Current)
	tag, _ := ecs.GetAs(w.Components(), 0, component.TagType)
	assert.Equal(t, "hero", tag.Label)
}

func TestEncode_Golden(t *testing.T) {
	data, err := Encode(sampleState(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "snapshot", data)
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	st := sampleState(t)
	require.NoError(t, s.Save(ctx, "level-1", st))
	require.NoError(t, s.Save(ctx, "autosave", &world.ProjectState{}))
	assert.Error(t, s.Save(ctx, "../escape", st))

	got, err := s.Load(ctx, "level-1")
	require.NoError(t, err)
	assertRestores(t, got)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "autosave", list[0].Name)
	assert.Equal(t, 0, list[0].Entities)
	assert.Equal(t, "level-1", list[1].Name)
	assert.Equal(t, 2, list[1].Entities)
	assert.False(t, list[1].SavedAt.IsZero())

	// Saving again replaces.
	require.NoError(t, s.Save(ctx, "level-1", &world.ProjectState{Entities: []ecs.EntityID{7}}))
	got, err = s.Load(ctx, "level-1")
	require.NoError(t, err)
	assert.Equal(t, []ecs.EntityID{7}, got.Entities)

	require.NoError(t, s.Close())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "snaps"), zaptest.NewLogger(t))
	require.NoError(t, err)
	testStore(t, s)
}

func TestFileStore_SkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("entities: [\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, s.Save(context.Background(), "ok", sampleState(t)))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok", list[0].Name)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "snapshots.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	testStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SCENEFORGE_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("SCENEFORGE_TEST_POSTGRES not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, config.SnapshotConfig{DSN: dsn, MaxConns: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, `DELETE FROM snapshots`)
	require.NoError(t, err)

	version, err := RunMigrations(ctx, s.pool, zaptest.NewLogger(t))
	require.NoError(t, err, "migrations are idempotent")
	assert.Equal(t, int64(1), version)
	var applied int
	require.NoError(t, s.pool.QueryRow(ctx,
		`SELECT count(*) FROM `+VersionTable+` WHERE version_id = 1`).Scan(&applied))
	assert.Equal(t, 1, applied)

	testStore(t, s)
}

func TestOpen_SelectsDriver(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	s, err := Open(ctx, config.SnapshotConfig{Driver: "file", Dir: t.TempDir()}, log)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, config.SnapshotConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "x.db")}, log)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.SnapshotConfig{Driver: "s3"}, log)
	assert.Error(t, err)
}

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_snapshots.sql"}, files)
}
