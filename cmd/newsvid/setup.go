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
	"log/slog"

	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/config"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/core/services"
	"github.com/avelar/news-video-search/internal/core/workflow"
	"github.com/avelar/news-video-search/internal/media"
	"github.com/avelar/news-video-search/internal/store"
	"github.com/avelar/news-video-search/internal/telemetry"
)

// State holds every long-lived component a subcommand can need. It is
// built once per invocation after the config passes validation.
type State struct {
	Config   *config.Config
	Clients  *ai.Clients
	Scanner  *media.Scanner
	Frames   *media.Extractor
	Segments *store.SegmentStore
	Search   *services.SearchService
	Answers  *services.AnswerService
	Taxonomy []string

	otelShutdown func(context.Context) error
}

// loadConfig builds the defaults and overlays the TOML files. Validation is
// deferred to InitState so subcommand flags can override values first.
func loadConfig() (*config.Config, error) {
	telemetry.SetupLogging()
	cfg := config.NewConfig()
	if err := config.LoadConfig(cfg); err != nil {
		return nil, err
	}
	slog.Info("configuration loaded", "resolution", config.ResolutionOrder())
	return cfg, nil
}

// InitState validates the (possibly flag-overridden) config and wires the
// telemetry, store, AI clients, media tooling, and query services.
func InitState(ctx context.Context, cfg *config.Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	apiKey, err := config.APIKey()
	if err != nil {
		return nil, err
	}

	otelShutdown, err := telemetry.SetupOpenTelemetry(ctx, cfg.Application.Name)
	if err != nil {
		return nil, model.NewConfigurationError("failed to set up telemetry: %v", err)
	}

	segments, err := store.Open(cfg.Storage.VectorDBDir)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}

	// A previously generated tags file narrows the configured taxonomy.
	taxonomy := cfg.Taxonomy
	if fromFile, err := workflow.LoadTagsFile(cfg.Storage.TagsFile); err != nil {
		slog.Warn("ignoring unreadable tags file", "path", cfg.Storage.TagsFile, "error", err)
	} else if len(fromFile) > 0 {
		taxonomy = fromFile
	}

	clients := ai.NewClients(cfg, apiKey)

	return &State{
		Config:   cfg,
		Clients:  clients,
		Scanner:  media.NewScanner(cfg.FFmpeg.FFprobePath),
		Frames:   media.NewExtractor(cfg.FFmpeg.FFmpegPath),
		Segments: segments,
		Search: &services.SearchService{
			Segments: segments,
			Embedder: clients.Embedder,
		},
		Answers: &services.AnswerService{
			Generator:    clients.Generator,
			SystemPrompt: cfg.PromptTemplates.Answer,
		},
		Taxonomy:     taxonomy,
		otelShutdown: otelShutdown,
	}, nil
}

// RunIngest scans the configured video directory and runs the ingest
// pipeline over every playable video found.
func (s *State) RunIngest(ctx context.Context) (*model.IngestReport, error) {
	videos, err := s.Scanner.Scan(ctx, s.Config.Application.VideoDir)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "scan complete", "dir", s.Config.Application.VideoDir, "videos", len(videos))

	pipeline := workflow.NewVideoIngestPipeline(s.Config, s.Clients, s.Frames, s.Frames, s.Segments, s.Taxonomy)
	runner := workflow.NewIngestRunner(pipeline, s.Config.Application.ThreadPoolSize)
	return runner.Run(ctx, videos), nil
}

// Close flushes telemetry and releases the store.
func (s *State) Close(ctx context.Context) {
	if err := s.Segments.Close(); err != nil {
		slog.Warn("failed to close segment store", "error", err)
	}
	if s.otelShutdown != nil {
		if err := s.otelShutdown(ctx); err != nil {
			slog.Warn("failed to flush telemetry", "error", err)
		}
	}
}
