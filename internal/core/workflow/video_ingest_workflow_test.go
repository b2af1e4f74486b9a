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

package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"

	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/config"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/core/workflow"
	"github.com/avelar/news-video-search/internal/media"
	"github.com/avelar/news-video-search/internal/store"
	"github.com/avelar/news-video-search/internal/testutil"
)

func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Application.VideoDir = t.TempDir()
	cfg.Application.ThreadPoolSize = 1
	cfg.Storage.VectorDBDir = t.TempDir()
	cfg.Storage.TempAudioDir = t.TempDir()
	cfg.Models[config.ModelEmbedder] = config.AIModel{Model: "fake", MaxRequestsPerMinute: 60, BatchSize: 4}
	return cfg
}

func fakeClients(frames *testutil.FakeFrameSource) (*ai.Clients, *testutil.FakeVision, *testutil.FakeAnnotator) {
	vision := &testutil.FakeVision{OCRText: "BREAKING"}
	annotator := &testutil.FakeAnnotator{
		EntityList: []model.Entity{{Name: "Antonio Guterres", Kind: model.EntityPerson}},
		TagList:    []string{"Politics"},
	}
	clients := &ai.Clients{
		Transcriber: &testutil.FakeTranscriber{Spans: []model.TranscriptSpan{
			{Start: 0, End: 15, Text: "the secretary general spoke today"},
			{Start: 15, End: 45, Text: "calling for an immediate ceasefire"},
		}},
		VisualDescriber:  vision,
		TextExtractor:    vision,
		EntityRecognizer: annotator,
		TopicTagger:      annotator,
		Embedder:         &testutil.FakeEmbedder{},
		Generator:        &testutil.FakeGenerator{Answer: "unused"},
	}
	return clients, vision, annotator
}

func TestIngestPipelineIndexesWholeVideo(t *testing.T) {
	cfg := pipelineConfig(t)
	segments, err := store.Open(cfg.Storage.VectorDBDir)
	require.NoError(t, err)
	defer func() { require.NoError(t, segments.Close()) }()

	frames := &testutil.FakeFrameSource{DefaultGray: testutil.UniformGray(40, media.GrayFrameBytes)}
	clients, _, _ := fakeClients(frames)

	pipeline := workflow.NewVideoIngestPipeline(cfg, clients, frames, frames, segments, []string{"Politics"})
	runner := workflow.NewIngestRunner(pipeline, 1)

	videos := []*model.VideoSource{
		{ID: "vid-a", FileName: "a.mp4", Path: "/videos/a.mp4", Duration: 45},
	}
	report := runner.Run(context.Background(), videos)

	require.Len(t, report.Videos, 1)
	vr := report.Videos[0]
	assert.False(t, vr.Failed)
	assert.Equal(t, 4, vr.SegmentsPlanned) // 45s, 20s windows, 10s stride
	assert.Equal(t, 4, vr.SegmentsIndexed)
	assert.Equal(t, 0, vr.DegradedModalities)
	assert.Equal(t, 0, report.FailedCount())
	assert.Equal(t, 4, report.IndexedSegments())

	// Spot-check one fused record end to end.
	rec, err := segments.Get("vid-a", 0)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "the secretary general spoke today calling for an immediate ceasefire | caption 1 | BREAKING", rec.SearchText)
	require.Len(t, rec.Entities, 1)
	assert.Equal(t, "Antonio Guterres", rec.Entities[0].Name)
	assert.DeepEqual(t, []string{"Politics"}, rec.Tags)
}

func TestIngestPipelineDegradesWithoutAudio(t *testing.T) {
	cfg := pipelineConfig(t)
	segments, err := store.Open(cfg.Storage.VectorDBDir)
	require.NoError(t, err)
	defer func() { require.NoError(t, segments.Close()) }()

	frames := &testutil.FakeFrameSource{
		DefaultGray: testutil.UniformGray(40, media.GrayFrameBytes),
		AudioErr:    errors.New("no audio stream"),
	}
	clients, _, _ := fakeClients(frames)
	transcriber := clients.Transcriber.(*testutil.FakeTranscriber)

	pipeline := workflow.NewVideoIngestPipeline(cfg, clients, frames, frames, segments, []string{"Politics"})
	runner := workflow.NewIngestRunner(pipeline, 1)

	videos := []*model.VideoSource{
		{ID: "vid-a", FileName: "a.mp4", Path: "/videos/a.mp4", Duration: 45},
	}
	report := runner.Run(context.Background(), videos)

	require.Len(t, report.Videos, 1)
	vr := report.Videos[0]
	assert.False(t, vr.Failed)
	assert.Equal(t, 4, vr.SegmentsIndexed)
	// The transcript modality is lost for every planned segment, and the
	// transcriber is never reached.
	assert.Equal(t, 4, vr.DegradedModalities)
	assert.Equal(t, 0, transcriber.Calls)

	rec, err := segments.Get("vid-a", 0)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "caption 1 | BREAKING", rec.SearchText)
}

func TestIngestRunnerIsolatesFailingVideos(t *testing.T) {
	cfg := pipelineConfig(t)
	segments, err := store.Open(cfg.Storage.VectorDBDir)
	require.NoError(t, err)
	defer func() { require.NoError(t, segments.Close()) }()

	frames := &testutil.FakeFrameSource{DefaultGray: testutil.UniformGray(40, media.GrayFrameBytes)}
	clients, _, _ := fakeClients(frames)

	pipeline := workflow.NewVideoIngestPipeline(cfg, clients, frames, frames, segments, []string{"Politics"})
	runner := workflow.NewIngestRunner(pipeline, 2)

	videos := []*model.VideoSource{
		{ID: "vid-bad", FileName: "bad.mp4", Path: "/videos/bad.mp4", Duration: 0}, // planning fails
		{ID: "vid-ok", FileName: "ok.mp4", Path: "/videos/ok.mp4", Duration: 30},
	}
	report := runner.Run(context.Background(), videos)

	require.Len(t, report.Videos, 2)
	assert.Equal(t, 1, report.FailedCount())

	byID := make(map[string]*model.VideoReport)
	for _, vr := range report.Videos {
		byID[vr.VideoID] = vr
	}
	assert.True(t, byID["vid-bad"].Failed)
	assert.False(t, byID["vid-ok"].Failed)
	assert.Equal(t, 2, byID["vid-ok"].SegmentsIndexed) // 30s: windows at 0 and 10
}

func TestIngestReindexingIsIdempotent(t *testing.T) {
	cfg := pipelineConfig(t)
	segments, err := store.Open(cfg.Storage.VectorDBDir)
	require.NoError(t, err)
	defer func() { require.NoError(t, segments.Close()) }()

	frames := &testutil.FakeFrameSource{DefaultGray: testutil.UniformGray(40, media.GrayFrameBytes)}
	clients, _, _ := fakeClients(frames)

	pipeline := workflow.NewVideoIngestPipeline(cfg, clients, frames, frames, segments, []string{"Politics"})
	runner := workflow.NewIngestRunner(pipeline, 1)

	videos := []*model.VideoSource{
		{ID: "vid-a", FileName: "a.mp4", Path: "/videos/a.mp4", Duration: 45},
	}
	runner.Run(context.Background(), videos)

	// Second pass of the same video must not duplicate records.
	report := runner.Run(context.Background(), videos)
	assert.Equal(t, 0, report.FailedCount())

	n, err := segments.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
