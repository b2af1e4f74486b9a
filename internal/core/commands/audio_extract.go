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
	"os"
	"path/filepath"

	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/media"
)

// AudioExtractor pulls the video's audio track into a temp MP3 for the
// transcriber. Extraction failure degrades the transcript modality for
// every segment of the video; it never fails the chain, since the visual
// modalities can still be indexed.
type AudioExtractor struct {
	cor.BaseCommand
	audio        media.AudioSource
	tempAudioDir string
}

// NewAudioExtractor builds the extractor writing into tempAudioDir.
func NewAudioExtractor(name string, audio media.AudioSource, tempAudioDir string) *AudioExtractor {
	out := &AudioExtractor{
		BaseCommand:  *cor.NewBaseCommand(name),
		audio:        audio,
		tempAudioDir: tempAudioDir,
	}
	out.InputParamName = GetVideoSourceParamName()
	out.OutputParamName = GetAudioFileParamName()
	return out
}

func (c *AudioExtractor) Execute(context cor.Context) {
	video := context.Get(c.GetInputParam()).(*model.VideoSource)
	report := context.Get(GetReportParamName()).(*model.VideoReport)

	if err := os.MkdirAll(c.tempAudioDir, 0o755); err != nil {
		c.degrade(context, report, video, err)
		return
	}

	outPath := filepath.Join(c.tempAudioDir, video.ID+".mp3")
	if _, err := os.Stat(outPath); err == nil {
		// A previous run already extracted this track; reuse it.
		slog.DebugContext(context.GetContext(), "reusing extracted audio",
			"video", video.FileName, "path", outPath)
		context.Add(c.GetOutputParam(), outPath)
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		return
	}

	if err := c.audio.ExtractAudio(context.GetContext(), video.Path, outPath); err != nil {
		c.degrade(context, report, video, err)
		return
	}

	context.Add(c.GetOutputParam(), outPath)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}

// degrade logs the loss of the transcript modality and counts it once per
// planned segment.
func (c *AudioExtractor) degrade(context cor.Context, report *model.VideoReport, video *model.VideoSource, err error) {
	slog.WarnContext(context.GetContext(), "audio extraction failed; transcript degraded",
		"video", video.FileName, "error", err)
	report.DegradedModalities += report.SegmentsPlanned
	c.GetErrorCounter().Add(context.GetContext(), 1)
}
