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

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/core/model"
)

// NoContentResponse is returned verbatim when retrieval produces nothing;
// the generator is never called in that case.
const NoContentResponse = "I could not find any relevant content in the indexed videos for that question."

// DefaultAnswerSystemPrompt constrains the generator to the retrieved
// context. The config can override it.
const DefaultAnswerSystemPrompt = "You are a news research assistant. Answer the question based ONLY on the " +
	"provided context from news video segments. Keep the answer to 2-3 sentences. " +
	"If the context does not contain the answer, say so plainly."

// AnswerService is the answer synthesizer. It builds a grounded prompt
// from retrieved segments and returns the generated answer with one
// citation per retrieved segment. Citations are conservative: the chat
// API does not report which snippets it drew from, so every retrieved
// provenance triple is returned.
type AnswerService struct {
	Generator    ai.Generator
	SystemPrompt string
}

// Answer synthesizes a grounded response to the query from the hits.
func (s *AnswerService) Answer(ctx context.Context, query string, hits []*model.SegmentHit) (*model.Answer, error) {
	if len(hits) == 0 {
		return &model.Answer{Text: NoContentResponse, Citations: []model.Citation{}}, nil
	}

	systemPrompt := s.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultAnswerSystemPrompt
	}

	var b strings.Builder
	b.WriteString("Context from news video segments:\n\n")
	citations := make([]model.Citation, 0, len(hits))
	for i, hit := range hits {
		rec := hit.Record
		fmt.Fprintf(&b, "[%d] video %s, %.1fs-%.1fs:\n%s\n\n", i+1, rec.VideoID, rec.Start, rec.End, rec.SearchText)
		citations = append(citations, model.Citation{
			VideoID: rec.VideoID,
			Start:   rec.Start,
			End:     rec.End,
		})
	}
	fmt.Fprintf(&b, "Question: %s", query)

	text, err := s.Generator.Generate(ctx, systemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	return &model.Answer{Text: strings.TrimSpace(text), Citations: citations}, nil
}
