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

package segmenter_test

import (
	"errors"
	"testing"

	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/core/segmenter"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"
)

// TestWindowBoundaries verifies the canonical example: a 45 second video
// with a 20 second window and 10 second stride yields four windows starting
// at 0, 10, 20, and 30, with the last one truncated at 45.
func TestWindowBoundaries(t *testing.T) {
	plan, err := segmenter.NewPlan(45, 20, 10, 0)
	require.NoError(t, err)

	windows := plan.Slice()
	require.Len(t, windows, 4)

	starts := []float64{0, 10, 20, 30}
	ends := []float64{20, 30, 40, 45}
	for i, w := range windows {
		assert.Equal(t, i, w.Index)
		assert.Equal(t, starts[i], w.Start)
		assert.Equal(t, ends[i], w.End)
	}
}

// TestShortVideo verifies that a video shorter than the window size
// produces exactly one window covering the whole video.
func TestShortVideo(t *testing.T) {
	plan, err := segmenter.NewPlan(7.5, 20, 10, 0)
	require.NoError(t, err)

	windows := plan.Slice()
	require.Len(t, windows, 1)
	assert.Equal(t, 0.0, windows[0].Start)
	assert.Equal(t, 7.5, windows[0].End)
}

// TestFinalWindowTruncated verifies that the last window is clamped to the
// video end and that planning stops there rather than emitting another
// window inside the already-covered tail.
func TestFinalWindowTruncated(t *testing.T) {
	plan, err := segmenter.NewPlan(30.5, 20, 10, 0)
	require.NoError(t, err)

	windows := plan.Slice()
	require.Len(t, windows, 3)
	last := windows[len(windows)-1]
	assert.Equal(t, 20.0, last.Start)
	assert.Equal(t, 30.5, last.End)
}

// TestNoWindowAfterFullCoverage verifies planning halts with the first
// window whose end reaches the duration, for both a video shorter than the
// window size and a duration that is an exact multiple of the stride.
func TestNoWindowAfterFullCoverage(t *testing.T) {
	plan, err := segmenter.NewPlan(15, 20, 10, 0)
	require.NoError(t, err)

	windows := plan.Slice()
	require.Len(t, windows, 1)
	assert.Equal(t, 0.0, windows[0].Start)
	assert.Equal(t, 15.0, windows[0].End)

	plan, err = segmenter.NewPlan(40, 20, 10, 0)
	require.NoError(t, err)

	windows = plan.Slice()
	require.Len(t, windows, 3)
	assert.Equal(t, 20.0, windows[2].Start)
	assert.Equal(t, 40.0, windows[2].End)
}

// TestCoverageAndOverlap checks across a few parameter sets that every
// point of the video is covered and that consecutive windows overlap by
// window-stride seconds.
func TestCoverageAndOverlap(t *testing.T) {
	cases := []struct {
		duration, window, stride float64
	}{
		{45, 20, 10},
		{120, 30, 15},
		{61, 20, 20},
		{19.9, 20, 10},
	}
	for _, tc := range cases {
		plan, err := segmenter.NewPlan(tc.duration, tc.window, tc.stride, 0)
		require.NoError(t, err)

		windows := plan.Slice()
		require.NotEmpty(t, windows)
		assert.Equal(t, 0.0, windows[0].Start)
		assert.Equal(t, tc.duration, windows[len(windows)-1].End)

		for i := 1; i < len(windows); i++ {
			prev, cur := windows[i-1], windows[i]
			assert.Equal(t, prev.Start+tc.stride, cur.Start)
			// No gap between consecutive windows.
			assert.True(t, cur.Start <= prev.End)
		}
	}
}

// TestMaxSegments verifies the window count cap.
func TestMaxSegments(t *testing.T) {
	plan, err := segmenter.NewPlan(1000, 20, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Count())
}

// TestInvalidParameters verifies that bad window or stride values are
// rejected with a configuration error before any windows are produced.
func TestInvalidParameters(t *testing.T) {
	cases := []struct {
		name                     string
		duration, window, stride float64
	}{
		{"zero window", 45, 0, 10},
		{"negative window", 45, -5, 10},
		{"zero stride", 45, 20, 0},
		{"stride exceeds window", 45, 10, 20},
		{"zero duration", 0, 20, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := segmenter.NewPlan(tc.duration, tc.window, tc.stride, 0)
			require.Error(t, err)
			var cfgErr *model.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

// TestWindowsRestartable verifies the lazy sequence can be ranged over more
// than once and yields identical windows each time.
func TestWindowsRestartable(t *testing.T) {
	plan, err := segmenter.NewPlan(45, 20, 10, 0)
	require.NoError(t, err)

	first := plan.Slice()
	second := plan.Slice()
	require.Equal(t, first, second)

	// Early termination of one range must not affect the next.
	for range plan.Windows() {
		break
	}
	assert.Equal(t, 4, plan.Count())
}

// TestSegments verifies the model conversion carries the video ID and
// window indexes through.
func TestSegments(t *testing.T) {
	plan, err := segmenter.NewPlan(45, 20, 10, 0)
	require.NoError(t, err)

	segments := plan.Segments("abc123")
	require.Len(t, segments, 4)
	for i, s := range segments {
		assert.Equal(t, "abc123", s.VideoID)
		assert.Equal(t, i, s.Index)
	}
}
