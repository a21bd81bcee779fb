package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoogrow/dashboard/orchestrator"
	"github.com/echoogrow/dashboard/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Serve the HTML dashboard, its JSON API and Prometheus metrics. When
snapshot.schedule is set, snapshots are also persisted on that cron schedule.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		conf.Server.Addr = serveAddr
	}

	p, err := orchestrator.NewPipeline(conf, orchestrator.WithLogger(logger))
	if err != nil {
		return err
	}
	srv, err := server.New(p, conf.Data.Source, conf.Server.CacheSize, logger)
	if err != nil {
		return err
	}

	if conf.Snapshot.Schedule != "" {
		sched, err := orchestrator.NewScheduler(p, conf.Snapshot.Schedule, conf.Data.Source, conf.Paths.Outputs)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(conf.Server.Addr) }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
