package cli

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sceneforge/engine/internal/core/loop"
	"github.com/sceneforge/engine/internal/persist"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Load   string
	Save   string
	Frames uint64
	Spawn  []string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scene until interrupted",
		Long: `Build a world, spawn template entities or load a snapshot, and drive
the frame loop until SIGINT/SIGTERM or until --frames frames have run.

Example:
  sceneforge run --spawn player,enemy,enemy --frames 600 --save demo
  sceneforge run --load demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runScene(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Load, "load", "", "snapshot to load instead of spawning")
	cmd.Flags().StringVar(&opts.Save, "save", "", "snapshot name to save on exit")
	cmd.Flags().Uint64Var(&opts.Frames, "frames", 0, "stop after this many frames (0 = run until interrupted)")
	cmd.Flags().StringSliceVar(&opts.Spawn, "spawn", []string{"player", "enemy", "obstacle", "pickup"}, "templates to spawn")

	return cmd
}

func runScene(ctx context.Context, opts *RunOptions, cmd *cobra.Command) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	rt, err := NewRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	var store persist.Store
	if opts.Load != "" || opts.Save != "" {
		store, err = persist.Open(ctx, cfg.Snapshot, log)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	if opts.Load != "" {
		st, err := store.Load(ctx, opts.Load)
		if err != nil {
			return err
		}
		if err := rt.World.LoadProjectState(st); err != nil {
			return fmt.Errorf("load snapshot %s: %w", opts.Load, err)
		}
		rt.History.Clear()
	} else {
		n := rt.Spawn(opts.Spawn...)
		log.Info("entities spawned", zap.Int("count", n))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	gate := &frameGate{next: rt.World.Systems(), limit: opts.Frames, done: cancel}
	l := loop.New(gate, loop.NewTimerScheduler(cfg.Loop.FrameInterval), log)

	start := time.Now()
	l.Run(runCtx)
	frames := gate.close()
	log.Info("loop stopped", zap.Uint64("frames", frames), zap.Duration("elapsed", time.Since(start)))

	// Save with a fresh context; ctx may already be cancelled by the signal.
	if opts.Save != "" {
		st, err := rt.World.ProjectState()
		if err != nil {
			return err
		}
		if err := store.Save(context.WithoutCancel(ctx), opts.Save, st); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "frames=%d entities=%d\n",
		frames, rt.World.Entities().ActiveEntities().Len())
	return nil
}

// frameGate serializes frames against shutdown and ends the run after a
// frame budget. Once closed it drops every later frame.
type frameGate struct {
	mu     sync.Mutex
	next   loop.Updater
	limit  uint64
	count  uint64
	closed bool
	done   context.CancelFunc
}

func (g *frameGate) UpdateAll(dt time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.next.UpdateAll(dt)
	g.count++
	if g.limit > 0 && g.count >= g.limit {
		g.closed = true
		g.done()
	}
}

// close waits for a frame in progress and returns the frame count.
func (g *frameGate) close() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return g.count
}
