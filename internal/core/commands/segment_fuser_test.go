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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"

	"github.com/avelar/news-video-search/internal/core/commands"
	"github.com/avelar/news-video-search/internal/core/model"
)

func TestFuseTextOrderAndSeparator(t *testing.T) {
	bundle := &model.ModalityBundle{
		Transcript: "the anchor reads the headlines",
		Caption:    "a studio desk with two presenters",
		OCRText:    "BREAKING: STORM WARNING",
	}
	assert.Equal(t,
		"the anchor reads the headlines | a studio desk with two presenters | BREAKING: STORM WARNING",
		commands.FuseText(bundle))
}

func TestFuseTextSkipsEmptyModalities(t *testing.T) {
	bundle := &model.ModalityBundle{
		Transcript: "  ",
		Caption:    "a reporter in the field",
		OCRText:    "",
	}
	assert.Equal(t, "a reporter in the field", commands.FuseText(bundle))

	empty := &model.ModalityBundle{}
	assert.Equal(t, "", commands.FuseText(empty))
}

func TestFuseProducesRecordForEmptyBundle(t *testing.T) {
	bundle := &model.ModalityBundle{
		Segment: model.Segment{VideoID: "vid-a", Index: 3, Start: 30, End: 50},
	}
	rec := commands.Fuse(bundle)

	assert.Equal(t, "vid-a:3", rec.ID)
	assert.Equal(t, "vid-a", rec.VideoID)
	assert.Equal(t, 3, rec.SegmentIndex)
	assert.Equal(t, float64(30), rec.Start)
	assert.Equal(t, float64(50), rec.End)
	assert.Equal(t, "", rec.SearchText)
}

func TestFuseDeduplicatesCaseInsensitively(t *testing.T) {
	bundle := &model.ModalityBundle{
		Segment: model.Segment{VideoID: "vid-a", Index: 0, Start: 0, End: 20},
		Entities: []model.Entity{
			{Name: "United Nations", Kind: model.EntityOrg},
			{Name: "united nations", Kind: model.EntityOrg},
			{Name: "United Nations", Kind: model.EntityGPE},
		},
		Tags: []string{"Politics", "politics", "Weather"},
	}
	rec := commands.Fuse(bundle)

	// Same name with a different kind is a distinct entity.
	require.Len(t, rec.Entities, 2)
	assert.Equal(t, "United Nations", rec.Entities[0].Name)
	assert.Equal(t, model.EntityOrg, rec.Entities[0].Kind)
	assert.Equal(t, model.EntityGPE, rec.Entities[1].Kind)

	// First-seen casing wins for tags.
	assert.DeepEqual(t, []string{"Politics", "Weather"}, rec.Tags)
}

func TestTranscriptForWindow(t *testing.T) {
	spans := []model.TranscriptSpan{
		{Start: 0, End: 8, Text: "good evening"},
		{Start: 8, End: 18, Text: "our top story tonight"},
		{Start: 18, End: 25, Text: "flooding in the valley"},
		{Start: 25, End: 31, Text: "now to sports"},
	}

	// Window [10, 20) overlaps the second and third spans only.
	assert.Equal(t, "our top story tonight flooding in the valley",
		commands.TranscriptForWindow(spans, 10, 20))

	// A span touching the boundary exactly does not overlap.
	assert.Equal(t, "good evening", commands.TranscriptForWindow(spans, 0, 8))

	// Out-of-range window has no transcript.
	assert.Equal(t, "", commands.TranscriptForWindow(spans, 40, 60))

	assert.Equal(t, "", commands.TranscriptForWindow(nil, 0, 20))
}
