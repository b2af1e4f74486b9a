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
	"strings"

	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
)

// SegmentFuser folds each segment's modality bundle into one index-ready
// record. Fusion is pure and total: a record is produced for every bundle,
// even when all modalities are empty, so the index always reflects the
// planned window set.
type SegmentFuser struct {
	cor.BaseCommand
}

// NewSegmentFuser builds the fuser command.
func NewSegmentFuser(name string) *SegmentFuser {
	out := &SegmentFuser{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = GetBundlesParamName()
	out.OutputParamName = GetRecordsParamName()
	return out
}

func (c *SegmentFuser) Execute(context cor.Context) {
	bundles := context.Get(c.GetInputParam()).([]*model.ModalityBundle)

	records := make([]*model.SegmentRecord, 0, len(bundles))
	for _, bundle := range bundles {
		records = append(records, Fuse(bundle))
	}

	context.Add(c.GetOutputParam(), records)
	context.Add(cor.CtxOut, records)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}

// Fuse builds the segment record for one bundle. Modalities concatenate in
// the fixed order transcript, caption, on-screen text, separated by " | ";
// absent modalities are skipped silently. Entities and tags deduplicate
// case-insensitively with the first-seen casing kept.
func Fuse(bundle *model.ModalityBundle) *model.SegmentRecord {
	seg := bundle.Segment
	return &model.SegmentRecord{
		ID:           model.RecordID(seg.VideoID, seg.Index),
		VideoID:      seg.VideoID,
		SegmentIndex: seg.Index,
		Start:        seg.Start,
		End:          seg.End,
		SearchText:   FuseText(bundle),
		Entities:     dedupEntities(bundle.Entities),
		Tags:         dedupStrings(bundle.Tags),
	}
}

// FuseText concatenates the bundle's non-empty modality texts in the fixed
// fusion order.
func FuseText(bundle *model.ModalityBundle) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{bundle.Transcript, bundle.Caption, bundle.OCRText} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}

// TranscriptForWindow assembles the transcript text for one window by
// concatenating, in order, every span that overlaps [start, end).
func TranscriptForWindow(spans []model.TranscriptSpan, start, end float64) string {
	parts := make([]string, 0)
	for _, s := range spans {
		if s.Start < end && s.End > start {
			if t := strings.TrimSpace(s.Text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

func dedupEntities(in []model.Entity) []model.Entity {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]model.Entity, 0, len(in))
	for _, e := range in {
		key := strings.ToLower(e.Name) + "|" + e.Kind
		if !seen[key] {
			seen[key] = true
			out = append(out, e)
		}
	}
	return out
}

func dedupStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
