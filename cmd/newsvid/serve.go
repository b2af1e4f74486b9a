// Copyright 2025 Avelar Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/avelar/news-video-search/internal/api"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search API and rescan the video directory on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			state, err := InitState(ctx, cfg)
			if err != nil {
				return err
			}
			defer state.Close(ctx)

			return runServer(ctx, state)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, e.g. :8080 (overrides config)")
	return cmd
}

func runServer(ctx context.Context, state *State) error {
	router := api.NewRouter(&api.Services{
		Search:   state.Search,
		Answers:  state.Answers,
		Segments: state.Segments,
		TopK:     state.Config.Search.TopK,
	}, state.Config.Application.Name)

	srv := &http.Server{
		Addr:    state.Config.Serve.Addr,
		Handler: router,
	}

	rescanCtx, cancelRescan := context.WithCancel(ctx)
	defer cancelRescan()

	// The rescan picks up videos dropped into the directory while serving.
	// Overlapping runs are skipped rather than queued.
	var rescanning atomic.Bool
	scheduler := cron.New()
	if schedule := state.Config.Serve.RescanSchedule; schedule != "" {
		if _, err := scheduler.AddFunc(schedule, func() {
			if !rescanning.CompareAndSwap(false, true) {
				slog.Warn("previous rescan still running, skipping this one")
				return
			}
			defer rescanning.Store(false)
			report, err := state.RunIngest(rescanCtx)
			if err != nil {
				slog.Error("scheduled rescan failed", "error", err)
				return
			}
			slog.Info("scheduled rescan complete",
				"videos", len(report.Videos),
				"indexed", report.IndexedSegments(),
				"failed", report.FailedCount())
		}); err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("shutting down", "reason", ctx.Err())
	}

	cancelRescan()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
