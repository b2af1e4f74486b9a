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

// Package workflow assembles the pipeline commands into runnable chains
// and drives them across a video library.
package workflow

import (
	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/config"
	"github.com/avelar/news-video-search/internal/core/commands"
	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/media"
	"github.com/avelar/news-video-search/internal/store"
)

// NewVideoIngestPipeline assembles the per-video ingest chain:
//
//	plan windows -> extract audio -> transcribe -> analyze scenes ->
//	annotate segments -> fuse -> index
//
// The chain holds no per-execution state, so one instance can be executed
// concurrently over distinct contexts by the ingest worker pool. The chain
// stops early only on video-fatal errors; modality failures degrade and
// are tallied on the video report.
func NewVideoIngestPipeline(
	cfg *config.Config,
	clients *ai.Clients,
	frames media.FrameSource,
	audio media.AudioSource,
	segments *store.SegmentStore,
	taxonomy []string,
) cor.Chain {
	chain := cor.NewBaseChain("video-ingest")
	chain.AddCommand(commands.NewWindowPlanner(
		"window-planner",
		cfg.Segmenter.WindowSeconds,
		cfg.Segmenter.StrideSeconds,
		cfg.Segmenter.MaxSegments,
	))
	chain.AddCommand(commands.NewAudioExtractor(
		"audio-extractor",
		audio,
		cfg.Storage.TempAudioDir,
	))
	chain.AddCommand(commands.NewTranscriptGenerator(
		"transcript-generator",
		clients.Transcriber,
	))
	chain.AddCommand(commands.NewSceneAnalyzer(
		"scene-analyzer",
		frames,
		clients.VisualDescriber,
		clients.TextExtractor,
		cfg.FrameSampler.SceneChangeThreshold,
	))
	chain.AddCommand(commands.NewSegmentAnnotator(
		"segment-annotator",
		clients.EntityRecognizer,
		clients.TopicTagger,
		taxonomy,
		cfg.Application.ThreadPoolSize,
	))
	chain.AddCommand(commands.NewSegmentFuser("segment-fuser"))
	chain.AddCommand(commands.NewSegmentIndexer(
		"segment-indexer",
		clients.Embedder,
		segments,
		cfg.Models[config.ModelEmbedder].BatchSizeOrDefault(),
	))
	return chain
}
