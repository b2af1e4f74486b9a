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

package workflow

import (
	goctx "context"
	"encoding/json"
	"os"
	"strings"

	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/store"
)

// samplesPerVideo bounds how many indexed records per video the taxonomy
// pass sends to the tagger.
const samplesPerVideo = 3

// TaxonomyGenerator re-derives the active tag set from indexed content.
// It samples a few records per video, asks the tagger to label them
// against the allowed taxonomy, and persists the labels that were actually
// used, in taxonomy order. Ingest-time tagging prefers this file over the
// configured taxonomy when it exists.
type TaxonomyGenerator struct {
	segments *store.SegmentStore
	tagger   ai.TopicTagger
	taxonomy []string
}

// NewTaxonomyGenerator builds the generator over an open store.
func NewTaxonomyGenerator(segments *store.SegmentStore, tagger ai.TopicTagger, taxonomy []string) *TaxonomyGenerator {
	return &TaxonomyGenerator{segments: segments, tagger: tagger, taxonomy: taxonomy}
}

// Run samples the index and returns the observed labels, ordered by their
// position in the allowed taxonomy.
func (g *TaxonomyGenerator) Run(ctx goctx.Context) ([]model.TagLabel, error) {
	videos, err := g.segments.Videos()
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	for _, videoID := range videos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := g.segments.SampleByVideo(videoID, samplesPerVideo)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if strings.TrimSpace(rec.SearchText) == "" {
				continue
			}
			tags, err := g.tagger.Tags(ctx, rec.SearchText, g.taxonomy)
			if err != nil {
				runnerLogger.WarnContext(ctx, "taxonomy sample failed", "key", rec.ID, "error", err)
				continue
			}
			for _, t := range tags {
				used[strings.ToLower(t)] = true
			}
		}
	}

	out := make([]model.TagLabel, 0, len(used))
	for _, label := range g.taxonomy {
		if used[strings.ToLower(label)] {
			out = append(out, model.TagLabel{Label: label})
		}
	}
	return out, nil
}

// WriteTagsFile persists the labels as an ordered JSON list of
// {"label": ...} objects.
func WriteTagsFile(path string, labels []model.TagLabel) error {
	data, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadTagsFile reads a persisted taxonomy file back into a flat label
// list. A missing file returns nil with no error; callers fall back to the
// configured taxonomy.
func LoadTagsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var labels []model.TagLabel
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Label)
	}
	return out, nil
}
