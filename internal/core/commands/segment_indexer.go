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

package commands

import (
	"log/slog"

	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/store"
)

// SegmentIndexer embeds the fused records in batches and upserts them into
// the vector store. The video's previous records are deleted first so a
// shortened video leaves no stale tail segments. A failed batch leaves its
// segments unindexed and the run continues.
type SegmentIndexer struct {
	cor.BaseCommand
	embedder  ai.Embedder
	segments  *store.SegmentStore
	batchSize int
}

// NewSegmentIndexer builds the indexer with the embedding batch size.
func NewSegmentIndexer(name string, embedder ai.Embedder, segments *store.SegmentStore, batchSize int) *SegmentIndexer {
	if batchSize < 1 {
		batchSize = 16
	}
	out := &SegmentIndexer{
		BaseCommand: *cor.NewBaseCommand(name),
		embedder:    embedder,
		segments:    segments,
		batchSize:   batchSize,
	}
	out.InputParamName = GetRecordsParamName()
	return out
}

func (c *SegmentIndexer) Execute(context cor.Context) {
	records := context.Get(c.GetInputParam()).([]*model.SegmentRecord)
	video := context.Get(GetVideoSourceParamName()).(*model.VideoSource)
	report := context.Get(GetReportParamName()).(*model.VideoReport)
	ctx := context.GetContext()

	if err := c.segments.DeleteVideo(video.ID); err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		report.MarkFailed(err.Error())
		context.AddError(c.GetName(), &model.IndexingError{Key: video.ID, Err: err})
		return
	}

	for start := 0; start < len(records); start += c.batchSize {
		end := start + c.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.SearchText
		}

		vectors, err := c.embedder.Embed(ctx, texts)
		if err != nil {
			slog.WarnContext(ctx, "embedding batch failed; segments unindexed",
				"video", video.FileName, "from", batch[0].SegmentIndex, "count", len(batch), "error", err)
			report.UnindexedSegments += len(batch)
			c.GetErrorCounter().Add(ctx, 1)
			continue
		}

		for i, rec := range batch {
			if err := c.segments.Upsert(rec, vectors[i]); err != nil {
				slog.WarnContext(ctx, "upsert failed; segment unindexed",
					"key", rec.ID, "error", err)
				report.UnindexedSegments++
				c.GetErrorCounter().Add(ctx, 1)
				continue
			}
			report.SegmentsIndexed++
		}
	}

	if report.SegmentsPlanned > 0 && report.SegmentsIndexed == 0 {
		report.MarkFailed("no segments could be indexed")
	}
	context.Add(cor.CtxOut, records)
	c.GetSuccessCounter().Add(ctx, 1)
}
