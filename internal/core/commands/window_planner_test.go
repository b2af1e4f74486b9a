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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"

	"github.com/avelar/news-video-search/internal/core/commands"
	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
)

func newPlannerContext(duration float64) (cor.Context, *model.VideoReport) {
	video := &model.VideoSource{ID: "vid-a", FileName: "a.mp4", Path: "/videos/a.mp4", Duration: duration}
	report := &model.VideoReport{VideoID: video.ID, FileName: video.FileName}
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, video)
	ctx.Add(commands.GetReportParamName(), report)
	return ctx, report
}

func TestWindowPlannerPublishesSegments(t *testing.T) {
	chCtx, report := newPlannerContext(45)

	cmd := commands.NewWindowPlanner("window-planner", 20, 10, 0)
	cmd.Execute(chCtx)

	require.False(t, chCtx.HasErrors())
	segments := chCtx.Get(commands.GetSegmentsParamName()).([]model.Segment)
	require.Len(t, segments, 4)
	assert.Equal(t, 4, report.SegmentsPlanned)

	// The final short window is kept, clamped to the video end.
	last := segments[3]
	assert.Equal(t, float64(30), last.Start)
	assert.Equal(t, float64(45), last.End)
	assert.Equal(t, "vid-a", last.VideoID)

	// The video moves to a named key for downstream commands.
	video := chCtx.Get(commands.GetVideoSourceParamName()).(*model.VideoSource)
	assert.Equal(t, "vid-a", video.ID)
}

func TestWindowPlannerFailsVideoOnBadParameters(t *testing.T) {
	chCtx, report := newPlannerContext(45)

	// Stride larger than window would leave coverage gaps.
	cmd := commands.NewWindowPlanner("window-planner", 10, 20, 0)
	cmd.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.True(t, report.Failed)

	var cfgErr *model.ConfigurationError
	err := chCtx.GetErrors()["window-planner"]
	assert.True(t, errors.As(err, &cfgErr))
}

func TestWindowPlannerFailsVideoOnZeroDuration(t *testing.T) {
	chCtx, report := newPlannerContext(0)

	cmd := commands.NewWindowPlanner("window-planner", 20, 10, 0)
	cmd.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.True(t, report.Failed)
}
