package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/agentboard/internal/activity"
	"github.com/aristath/agentboard/internal/events"
	"github.com/aristath/agentboard/internal/orchestrator"
	"github.com/aristath/agentboard/internal/project"
	"github.com/aristath/agentboard/internal/tui"
	"github.com/aristath/agentboard/internal/workspace"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, opts)
		},
	}
}

func newHeadlessCmd(opts *options) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run the plan to completion and print the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, opts, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits forever)")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [plan]",
		Short: "Check a project plan for duplicate ids, dangling dependencies and cycles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.projectPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no plan given: pass a path or --project")
			}
			p, err := project.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d tasks OK\n", p.Name, len(p.Tasks))
			if len(p.Files) > 0 {
				fmt.Fprint(out, workspace.Render(p.Files))
			}
			return nil
		},
	}
}

func newSampleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sample <path>",
		Short: "Write the built-in sample plan (format follows the extension)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.Save(project.Sample(), args[0]); err != nil {
				return err
			}
			opts.logger.Info("sample plan written", zap.String("path", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}

// newSession builds a session for the loaded plan with metrics on reg.
func newSession(opts *options, reg *prometheus.Registry) (*orchestrator.Session, project.Project, error) {
	p, err := opts.loadProject()
	if err != nil {
		return nil, project.Project{}, err
	}
	s, err := orchestrator.NewSession(p, opts.cfg.Scheduler,
		orchestrator.WithLogger(opts.logger),
		orchestrator.WithMetrics(orchestrator.MustNewMetrics(reg)),
	)
	if err != nil {
		return nil, project.Project{}, fmt.Errorf("creating session: %w", err)
	}
	return s, p, nil
}

func runBoard(cmd *cobra.Command, opts *options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	s, p, err := newSession(opts, reg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	model := tui.New(s, s.Events(), p.Name, opts.cfg, opts.globalPath, opts.projectCfgPath)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
	g.Go(func() error {
		// Quitting the board ends the metrics server too.
		defer cancel()
		_, err := prog.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			opts.logger.Info("shutdown signal received")
			return nil
		}
		return err
	})
	if opts.metricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, opts.metricsAddr, reg, opts.logger)
		})
	}
	return g.Wait()
}

func runHeadless(cmd *cobra.Command, opts *options, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	s, _, err := newSession(opts, reg)
	if err != nil {
		return err
	}
	defer s.Close()

	logSub := s.Events().Subscribe(events.TopicLog, 64)
	s.Start()

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if err := s.Wait(gctx); err != nil {
			return fmt.Errorf("plan did not finish: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		printLog(gctx, cmd.OutOrStdout(), s, logSub)
		return nil
	})
	if opts.metricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, opts.metricsAddr, reg, opts.logger)
		})
	}
	return g.Wait()
}

// printLog writes activity lines as they arrive. Each wakeup reads
// everything after the last printed entry, so events dropped by the bus
// never lose lines.
func printLog(ctx context.Context, w io.Writer, s *orchestrator.Session, sub <-chan events.Event) {
	var last uint64
	flush := func() {
		entries := s.LogSince(last)
		if len(entries) == 0 {
			return
		}
		for _, line := range activity.Lines(entries) {
			fmt.Fprintln(w, line)
		}
		last = entries[len(entries)-1].Seq
	}
	flush()
	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case _, ok := <-sub:
			if !ok {
				flush()
				return
			}
			flush()
		}
	}
}

// serveMetrics exposes reg on /metrics until ctx ends.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
