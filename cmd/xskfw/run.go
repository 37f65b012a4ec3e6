// File: cmd/xskfw/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// runRoot wires a built api.Config into a datapath.Datapath and drives
// its Init -> StartWorkers -> (wait for SIGINT/SIGTERM) -> StopWorkers
// -> Cleanup lifecycle, mirroring the shutdown-on-signal shape of
// _examples/momentics-hioload-ws/examples/highlevel/echo/main.go's
// signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM) wait.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sirupsen/logrus"

	"github.com/xskframe/xskframe/api"
	"github.com/xskframe/xskframe/datapath"
	"github.com/xskframe/xskframe/internal/logging"
	"github.com/xskframe/xskframe/kernel"
)

func runRoot(cmd *cobra.Command, args []string) error {
	logger := logging.New(viper.GetString("log-level"))

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("xskfw: %w", err)
	}

	var loader api.FilterLoader
	if cfg.Mode.HasXDP() {
		loader = kernel.NewLoader()
	}

	dp, err := datapath.Init(datapath.Params{
		Config:    cfg,
		Processor: bridgeProcessor(len(cfg.Interfaces)),
		Loader:    loader,
	})
	if err != nil {
		return abort(logger, "main", "runRoot", err)
	}

	if cfg.Mode.HasAFXDP() {
		if err := dp.StartWorkers(); err != nil {
			_ = dp.Cleanup()
			return abort(logger, "main", "runRoot", err)
		}
		logger.WithFields(map[string]any{
			"workers":    cfg.Workers,
			"interfaces": len(cfg.Interfaces),
			"mode":       cfg.Mode,
		}).Info("workers started")
	}

	waitForShutdown(logger)

	if cfg.Mode.HasAFXDP() {
		if err := dp.StopWorkers(); err != nil {
			logger.WithError(err).Warn("stop workers")
		}
	}
	if err := dp.Cleanup(); err != nil {
		logger.WithError(err).Warn("cleanup")
	}
	return nil
}

func waitForShutdown(logger *logrus.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")
}

// abort prints the file:func:line errno/"message" diagnostic line
// spec.md §6 requires, mirroring original_source's
// __exit_with_error(error, file, func, line), then returns a plain
// error so Execute's caller exits non-zero.
func abort(logger *logrus.Logger, file, fn string, err error) error {
	var derr *api.DatapathError
	fe := &api.FatalError{File: file, Func: fn, Line: 0, Errno: err, Inner: err}
	if errors.As(err, &derr) {
		fe.Errno = derr.Err
	}
	logging.Fatal(logger, fe)
	return err
}
