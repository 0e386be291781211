package persist

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sceneforge/engine/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const snapshotExt = ".yaml"

// FileStore keeps one yaml file per snapshot in a directory.
type FileStore struct {
	dir string
	log *zap.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, log *zap.Logger) (*FileStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+snapshotExt)
}

// Encode renders st the way FileStore writes it.
func Encode(st *world.ProjectState) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(st); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes through a temp file and rename, so readers never see a
// partial snapshot.
func (s *FileStore) Save(_ context.Context, name string, st *world.ProjectState) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := Encode(st)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	s.log.Info("snapshot saved", zap.String("name", name), zap.Int("entities", len(st.Entities)))
	return nil
}

func (s *FileStore) Load(_ context.Context, name string) (*world.ProjectState, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return s.read(name)
}

func (s *FileStore) read(name string) (*world.ProjectState, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("load snapshot %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	var st world.ProjectState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &st, nil
}

// List reads every snapshot to count its entities; unreadable files are
// logged and skipped.
func (s *FileStore) List(_ context.Context) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var out []SnapshotInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != snapshotExt {
			continue
		}
		name := strings.TrimSuffix(e.Name(), snapshotExt)
		st, err := s.read(name)
		if err != nil {
			s.log.Warn("skipping unreadable snapshot", zap.String("name", name), zap.Error(err))
			continue
		}
		info := SnapshotInfo{Name: name, Entities: len(st.Entities)}
		if fi, err := e.Info(); err == nil {
			info.SavedAt = fi.ModTime()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStore) Close() error { return nil }
