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
	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/core/segmenter"
)

// WindowPlanner is the first command of the ingest chain. It receives the
// *model.VideoSource as the chain input, plans the overlapping windows, and
// publishes both the video and its segments under named keys for the rest
// of the chain. A planning failure is video-fatal.
type WindowPlanner struct {
	cor.BaseCommand
	windowSeconds float64
	strideSeconds float64
	maxSegments   int
}

// NewWindowPlanner builds the planner with validated windowing parameters.
func NewWindowPlanner(name string, windowSeconds, strideSeconds float64, maxSegments int) *WindowPlanner {
	out := &WindowPlanner{
		BaseCommand:   *cor.NewBaseCommand(name),
		windowSeconds: windowSeconds,
		strideSeconds: strideSeconds,
		maxSegments:   maxSegments,
	}
	out.OutputParamName = GetSegmentsParamName()
	return out
}

func (c *WindowPlanner) Execute(context cor.Context) {
	video := context.Get(c.GetInputParam()).(*model.VideoSource)
	report := context.Get(GetReportParamName()).(*model.VideoReport)

	plan, err := segmenter.NewPlan(video.Duration, c.windowSeconds, c.strideSeconds, c.maxSegments)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		report.MarkFailed(err.Error())
		context.AddError(c.GetName(), err)
		return
	}

	segments := plan.Segments(video.ID)
	report.SegmentsPlanned = len(segments)

	context.Add(GetVideoSourceParamName(), video)
	context.Add(c.GetOutputParam(), segments)
	context.Add(cor.CtxOut, segments)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}
