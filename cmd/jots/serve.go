package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yangyining/jots/agent"
	"github.com/yangyining/jots/construction"
	"github.com/yangyining/jots/smi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo status tree over UDP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Duration("refresh", 10*time.Second, "interval between tree refreshes")
	viper.BindPFlag("refresh", serveCmd.Flags().Lookup("refresh"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	prefix, err := smi.ParseOid(viper.GetString("prefix"))
	if err != nil {
		return fmt.Errorf("bad prefix: %w", err)
	}

	status := newSystemStatus()
	started := time.Now()

	build := func() (*agent.Agent, error) {
		tr, err := construction.Build(status, prefix, construction.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return agent.New(viper.GetString("community"), tr, log), nil
	}
	a, err := build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Value changes are visible without a rebuild; the periodic rebuild
	// picks up shape changes such as added worker rows.
	go func() {
		ticker := time.NewTicker(viper.GetDuration("refresh"))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				status.refresh(started)
				tr, err := construction.Build(status, prefix, construction.WithLogger(log))
				if err != nil {
					log.Error("rebuild failed", zap.Error(err))
					continue
				}
				a.UpdateTree(tr)
			}
		}
	}()

	err = a.ListenAndServe(ctx, viper.GetString("listen"))
	if ctx.Err() != nil {
		log.Info("shutting down")
		return nil
	}
	return err
}
