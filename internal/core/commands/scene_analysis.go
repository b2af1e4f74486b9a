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
	"github.com/avelar/news-video-search/internal/media"
)

// SceneAnalyzer samples one frame per segment at the window midpoint and
// produces the visual modalities. Captioning is gated by scene-change
// detection: the frame's 64x64 grayscale thumbnail is compared (mean
// squared error) against the last frame that was actually analyzed, and
// when the difference is below the threshold the previous caption is
// reused without a model call. OCR runs on every frame because tickers
// and lower thirds change faster than scenes.
//
// Segments are processed strictly in order; the change-detector state is
// per video and owned by this command's single execution.
type SceneAnalyzer struct {
	cor.BaseCommand
	frames    media.FrameSource
	describer ai.VisualDescriber
	extractor ai.TextExtractor
	threshold float64
}

// sceneState tracks the last analyzed frame and its caption for one video.
type sceneState struct {
	lastAnalyzed []byte
	lastCaption  string
}

// NewSceneAnalyzer builds the analyzer with the scene-change MSE threshold.
func NewSceneAnalyzer(name string, frames media.FrameSource, describer ai.VisualDescriber, extractor ai.TextExtractor, threshold float64) *SceneAnalyzer {
	out := &SceneAnalyzer{
		BaseCommand: *cor.NewBaseCommand(name),
		frames:      frames,
		describer:   describer,
		extractor:   extractor,
		threshold:   threshold,
	}
	out.InputParamName = GetSegmentsParamName()
	out.OutputParamName = GetBundlesParamName()
	return out
}

func (c *SceneAnalyzer) Execute(context cor.Context) {
	segments := context.Get(c.GetInputParam()).([]model.Segment)
	video := context.Get(GetVideoSourceParamName()).(*model.VideoSource)
	report := context.Get(GetReportParamName()).(*model.VideoReport)

	var spans []model.TranscriptSpan
	if v := context.Get(GetTranscriptParamName()); v != nil {
		spans = v.([]model.TranscriptSpan)
	}

	state := &sceneState{}
	bundles := make([]*model.ModalityBundle, 0, len(segments))
	for _, seg := range segments {
		// Cancellation is honored between segments, never mid-segment.
		if err := context.GetContext().Err(); err != nil {
			context.AddError(c.GetName(), err)
			report.MarkFailed("ingestion cancelled")
			return
		}

		bundle := &model.ModalityBundle{
			Segment:    seg,
			Transcript: TranscriptForWindow(spans, seg.Start, seg.End),
		}
		c.analyzeFrame(context, video, seg, state, bundle, report)
		bundles = append(bundles, bundle)
	}

	context.Add(c.GetOutputParam(), bundles)
	context.Add(cor.CtxOut, bundles)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}

// analyzeFrame fills the bundle's caption and OCR text from the segment's
// midpoint frame. Every failure degrades the affected modality to empty
// and keeps going.
func (c *SceneAnalyzer) analyzeFrame(context cor.Context, video *model.VideoSource, seg model.Segment, state *sceneState, bundle *model.ModalityBundle, report *model.VideoReport) {
	ctx := context.GetContext()
	midpoint := seg.Start + (seg.End-seg.Start)/2

	gray, err := c.frames.FrameGray64(ctx, video.Path, midpoint)
	if err != nil {
		slog.WarnContext(ctx, "frame extraction failed; visual modalities degraded",
			"video", video.FileName, "segment", seg.Index, "error", err)
		report.DegradedModalities += 2 // caption and OCR both lost
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	// The first frame of a video is always analyzed. Only a difference
	// strictly below the threshold counts as the same scene.
	changed := state.lastAnalyzed == nil ||
		media.MeanSquaredError(gray, state.lastAnalyzed) >= c.threshold

	if !changed {
		bundle.Caption = state.lastCaption
	}

	// OCR needs the full-resolution frame regardless of scene change.
	jpeg, err := c.frames.FrameJPEG(ctx, video.Path, midpoint)
	if err != nil {
		slog.WarnContext(ctx, "jpeg extraction failed; visual modalities degraded",
			"video", video.FileName, "segment", seg.Index, "error", err)
		if changed {
			report.DegradedModalities += 2
		} else {
			report.DegradedModalities++
		}
		c.GetErrorCounter().Add(ctx, 1)
		return
	}

	if changed {
		caption, err := c.describer.Describe(ctx, jpeg)
		if err != nil {
			slog.WarnContext(ctx, "captioning failed; caption degraded",
				"video", video.FileName, "segment", seg.Index, "error", err)
			report.DegradedModalities++
			c.GetErrorCounter().Add(ctx, 1)
		} else {
			bundle.Caption = caption
			state.lastAnalyzed = gray
			state.lastCaption = caption
		}
	}

	ocr, err := c.extractor.ExtractText(ctx, jpeg)
	if err != nil {
		slog.WarnContext(ctx, "ocr failed; on-screen text degraded",
			"video", video.FileName, "segment", seg.Index, "error", err)
		report.DegradedModalities++
		c.GetErrorCounter().Add(ctx, 1)
		return
	}
	bundle.OCRText = ocr
}
