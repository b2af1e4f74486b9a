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

package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"

	"github.com/avelar/news-video-search/internal/core/commands"
	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/store"
	"github.com/avelar/news-video-search/internal/testutil"
)

func newIndexerContext(records []*model.SegmentRecord) (cor.Context, *model.VideoReport) {
	video := &model.VideoSource{ID: "vid-a", FileName: "a.mp4", Duration: 60}
	report := &model.VideoReport{VideoID: video.ID, FileName: video.FileName, SegmentsPlanned: len(records)}
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(commands.GetRecordsParamName(), records)
	ctx.Add(commands.GetVideoSourceParamName(), video)
	ctx.Add(commands.GetReportParamName(), report)
	return ctx, report
}

func testRecords(n int) []*model.SegmentRecord {
	out := make([]*model.SegmentRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &model.SegmentRecord{
			ID:           model.RecordID("vid-a", i),
			VideoID:      "vid-a",
			SegmentIndex: i,
			Start:        float64(i) * 10,
			End:          float64(i)*10 + 20,
			SearchText:   fmt.Sprintf("segment %d text", i),
		})
	}
	return out
}

func TestSegmentIndexerBatchesEmbeddings(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	embedder := &testutil.FakeEmbedder{}
	chCtx, report := newIndexerContext(testRecords(5))

	cmd := commands.NewSegmentIndexer("segment-indexer", embedder, s, 2)
	cmd.Execute(chCtx)

	// 5 records with batch size 2 means 3 embedding calls.
	assert.Equal(t, 3, embedder.Calls)
	assert.Equal(t, 5, report.SegmentsIndexed)
	assert.Equal(t, 0, report.UnindexedSegments)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := s.Get("vid-a", 4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "segment 4 text", got.SearchText)
}

func TestSegmentIndexerMarksFailedWhenNothingIndexed(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	embedder := &testutil.FakeEmbedder{Err: errors.New("embedding service down")}
	chCtx, report := newIndexerContext(testRecords(3))

	cmd := commands.NewSegmentIndexer("segment-indexer", embedder, s, 2)
	cmd.Execute(chCtx)

	assert.Equal(t, 0, report.SegmentsIndexed)
	assert.Equal(t, 3, report.UnindexedSegments)
	assert.True(t, report.Failed)
	// The indexer degrades rather than erroring the chain.
	assert.False(t, chCtx.HasErrors())
}

func TestSegmentIndexerReplacesPreviousVideoRecords(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	// Seed a longer, stale version of the video.
	for _, rec := range testRecords(6) {
		require.NoError(t, s.Upsert(rec, []float32{1, 0, 0}))
	}

	embedder := &testutil.FakeEmbedder{}
	chCtx, report := newIndexerContext(testRecords(3))

	cmd := commands.NewSegmentIndexer("segment-indexer", embedder, s, 16)
	cmd.Execute(chCtx)

	assert.Equal(t, 3, report.SegmentsIndexed)
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	stale, err := s.Get("vid-a", 5)
	require.NoError(t, err)
	assert.Nil(t, stale)
}

func TestSegmentIndexerHandlesNoRecords(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	embedder := &testutil.FakeEmbedder{}
	chCtx, report := newIndexerContext(nil)
	report.SegmentsPlanned = 0

	cmd := commands.NewSegmentIndexer("segment-indexer", embedder, s, 16)
	cmd.Execute(chCtx)

	assert.Equal(t, 0, embedder.Calls)
	assert.False(t, report.Failed)
	assert.False(t, chCtx.HasErrors())
}
