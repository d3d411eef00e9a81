package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/firewave/internal/feed"
	"github.com/vovakirdan/firewave/internal/observability"
	"github.com/vovakirdan/firewave/internal/platform/tui"
	"github.com/vovakirdan/firewave/internal/registry"
	"github.com/vovakirdan/firewave/internal/session"
	"github.com/vovakirdan/firewave/internal/storage"
)

var (
	flagHTTPAddr      string
	flagSSHAddr       string
	flagHostKey       string
	flagIdleTimeout   int
	flagServeDrivers  []string
	flagSnapshotEvery int
	flagFeedBuffer    int
	flagAutoStart     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a live session with websocket feed, metrics and SSH dashboard",
	Long: `Run the experience on a wall-clock ticker and expose it:

  GET /events    - websocket stream of events and periodic snapshots;
                   clients may send {"type":"start"} or {"type":"stop"}
  GET /snapshot  - current state as JSON
  GET /metrics   - Prometheus metrics
  ssh            - read-only dashboard with start/stop keys

Runs are recorded in the history database. Use --drivers to let scripted
actors play, e.g. for a demo or a soak test. An empty --ssh disables the
dashboard.

Examples:
  firewave serve
  firewave serve --http :8080 --ssh :2222
  firewave serve --drivers steady,erratic --auto-start
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", ":8080", "HTTP address for /events, /snapshot and /metrics")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH dashboard address (empty disables)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "SSH idle timeout in minutes")
	serveCmd.Flags().StringSliceVar(&flagServeDrivers, "drivers", nil, "Scripted drivers per actor (none by default)")
	serveCmd.Flags().IntVar(&flagSnapshotEvery, "snapshot-every", 3, "Broadcast a snapshot every N ticks (0 disables)")
	serveCmd.Flags().IntVar(&flagFeedBuffer, "feed-buffer", 256, "Messages buffered per feed client before dropping")
	serveCmd.Flags().BoolVar(&flagAutoStart, "auto-start", false, "Start an experience immediately")
}

func runServe(_ *cobra.Command, _ []string) {
	if err := serve(); err != nil {
		fail("%v", err)
	}
}

// serve returns instead of exiting so the deferred closes always run.
func serve() error {
	st, err := loadSetup()
	if err != nil {
		return err
	}
	logger := newLogger()

	opts := session.Options{
		Experience: st.exp,
		Layout:     st.layout,
		Preset:     st.preset,
		Logger:     logger,
	}
	store, storeErr := storage.Open(flagDBPath)
	if storeErr != nil {
		logger.Warn("could not open run history", "error", storeErr)
	} else {
		defer store.Close()
		opts.Saver = store
	}

	s, err := session.New(opts)
	if err != nil {
		return err
	}
	cfg := runtimeConfig()
	runner := session.NewRunner(s, cfg.TickRate)

	hub := feed.NewHub()
	defer hub.Close()
	publisher := feed.Attach(s, hub, feed.WithSnapshotEvery(flagSnapshotEvery))
	runner.OnTick(publisher.OnTick)

	collector, err := observability.NewCollector(nil)
	if err != nil {
		return err
	}
	if _, err := collector.Attach(s); err != nil {
		return err
	}
	runner.OnTick(collector.OnTick)

	if len(flagServeDrivers) > 0 {
		crew, crewErr := registry.NewCrew(s, cfg.StepSeconds(), st.exp.Waves.Seed, flagServeDrivers...)
		if crewErr != nil {
			return crewErr
		}
		runner.OnTick(crew.OnTick)
		logger.Info("scripted actors enabled", "drivers", flagServeDrivers)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	feed.NewServer(hub, runner, logger, flagFeedBuffer).Routes(mux)
	mux.Handle("/metrics", collector.Handler())
	httpSrv := &http.Server{
		Addr:              flagHTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting HTTP server", "address", flagHTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if flagSSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = flagSSHAddr
		sshCfg.HostKeyPath = flagHostKey
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		sshSrv, sshErr := tui.NewSSHServer(sshCfg, runner, logger)
		if sshErr != nil {
			return sshErr
		}
		go func() {
			if err := sshSrv.ListenAndServe(ctx); err != nil {
				logger.Error("ssh server error", "error", err)
			}
		}()
	}

	if flagAutoStart {
		runner.Send(session.StartCmd{})
	}

	logger.Info("session live", "tick_rate", cfg.TickRate, "layout", st.layout.Name, "preset", st.preset)
	runner.Run(ctx)

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	return nil
}
