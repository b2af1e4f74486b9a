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

// Package services exposes the query-side operations: retrieving segments
// for a natural-language query and synthesizing a grounded answer.
package services

import (
	"context"
	"fmt"

	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/store"
)

// SearchService is the retriever. It embeds the query with the same model
// used at indexing time and ranks stored segments by cosine similarity.
type SearchService struct {
	Segments *store.SegmentStore
	Embedder ai.Embedder
}

// FindSegments returns the top-k most similar segments for the query.
// An empty index yields an empty slice, not an error.
func (s *SearchService) FindSegments(ctx context.Context, query string, k int) ([]*model.SegmentHit, error) {
	vectors, err := s.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one query vector, got %d", len(vectors))
	}
	return s.Segments.Query(vectors[0], k)
}
