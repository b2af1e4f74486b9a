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

// Package segmenter computes the overlapping temporal windows a video is
// analyzed in. Window i starts at i*stride and ends at min(start+window,
// duration), so consecutive windows overlap by window-stride seconds.
// Planning stops with the first window that reaches the end of the video;
// that final window is kept however short it is, and every second of the
// video belongs to at least one window.
package segmenter

import (
	"iter"

	"github.com/avelar/news-video-search/internal/core/model"
)

// Window is one planned analysis window. Start is inclusive, End exclusive,
// in seconds.
type Window struct {
	Index int
	Start float64
	End   float64
}

// Plan holds validated windowing parameters for a single video.
type Plan struct {
	Duration    float64
	WindowSize  float64
	Stride      float64
	MaxSegments int // 0 means unlimited
}

// NewPlan validates the parameters and returns a Plan. The stride must be
// positive and no larger than the window size; a stride equal to the window
// size produces back-to-back windows with no overlap.
func NewPlan(duration, windowSize, stride float64, maxSegments int) (*Plan, error) {
	if duration <= 0 {
		return nil, model.NewConfigurationError("video duration must be positive, got %v", duration)
	}
	if windowSize <= 0 {
		return nil, model.NewConfigurationError("window size must be positive, got %v", windowSize)
	}
	if stride <= 0 {
		return nil, model.NewConfigurationError("stride must be positive, got %v", stride)
	}
	if stride > windowSize {
		return nil, model.NewConfigurationError("stride %v exceeds window size %v, which would leave gaps", stride, windowSize)
	}
	if maxSegments < 0 {
		return nil, model.NewConfigurationError("max segments must be non-negative, got %d", maxSegments)
	}
	return &Plan{
		Duration:    duration,
		WindowSize:  windowSize,
		Stride:      stride,
		MaxSegments: maxSegments,
	}, nil
}

// Windows returns a lazy sequence of the plan's windows. The sequence can
// be ranged over multiple times; each range restarts from the first window.
func (p *Plan) Windows() iter.Seq[Window] {
	return func(yield func(Window) bool) {
		for i := 0; ; i++ {
			if p.MaxSegments > 0 && i >= p.MaxSegments {
				return
			}
			start := float64(i) * p.Stride
			if start >= p.Duration {
				return
			}
			end := start + p.WindowSize
			last := end >= p.Duration
			if last {
				end = p.Duration
			}
			if !yield(Window{Index: i, Start: start, End: end}) {
				return
			}
			// The video is fully covered; a further window would only
			// repeat its tail.
			if last {
				return
			}
		}
	}
}

// Slice materializes all windows.
func (p *Plan) Slice() []Window {
	out := make([]Window, 0)
	for w := range p.Windows() {
		out = append(out, w)
	}
	return out
}

// Count returns the number of windows the plan will produce.
func (p *Plan) Count() int {
	n := 0
	for range p.Windows() {
		n++
	}
	return n
}

// Segments materializes the plan as model segments for the given video.
func (p *Plan) Segments(videoID string) []model.Segment {
	out := make([]model.Segment, 0)
	for w := range p.Windows() {
		out = append(out, model.Segment{
			VideoID: videoID,
			Index:   w.Index,
			Start:   w.Start,
			End:     w.End,
		})
	}
	return out
}
