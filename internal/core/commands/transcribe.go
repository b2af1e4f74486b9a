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
)

// TranscriptGenerator sends the extracted audio to the transcriber and
// publishes the timed spans. If the audio step degraded, IsExecutable
// fails and the chain simply moves on with no transcript. A transcription
// failure after the retry budget degrades the modality the same way.
type TranscriptGenerator struct {
	cor.BaseCommand
	transcriber ai.Transcriber
}

// NewTranscriptGenerator builds the command around a Transcriber.
func NewTranscriptGenerator(name string, transcriber ai.Transcriber) *TranscriptGenerator {
	out := &TranscriptGenerator{
		BaseCommand: *cor.NewBaseCommand(name),
		transcriber: transcriber,
	}
	out.InputParamName = GetAudioFileParamName()
	out.OutputParamName = GetTranscriptParamName()
	return out
}

func (c *TranscriptGenerator) Execute(context cor.Context) {
	audioPath := context.Get(c.GetInputParam()).(string)
	report := context.Get(GetReportParamName()).(*model.VideoReport)

	spans, err := c.transcriber.Transcribe(context.GetContext(), audioPath)
	if err != nil {
		slog.WarnContext(context.GetContext(), "transcription failed; transcript degraded",
			"audio", audioPath, "error", err)
		report.DegradedModalities += report.SegmentsPlanned
		c.GetErrorCounter().Add(context.GetContext(), 1)
		return
	}

	context.Add(c.GetOutputParam(), spans)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}
