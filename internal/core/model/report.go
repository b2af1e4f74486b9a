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

package model

import "fmt"

// VideoReport accumulates the outcome of ingesting a single video. It is
// mutated only by the pipeline commands of that video's chain, which run
// sequentially, so no locking is needed.
type VideoReport struct {
	VideoID            string `json:"video_id"`
	FileName           string `json:"file_name"`
	SegmentsPlanned    int    `json:"segments_planned"`
	SegmentsIndexed    int    `json:"segments_indexed"`
	DegradedModalities int    `json:"degraded_modalities"`
	UnindexedSegments  int    `json:"unindexed_segments"`
	Failed             bool   `json:"failed"`
	FailureReason      string `json:"failure_reason,omitempty"`
}

// MarkFailed records a video-fatal condition, one that prevented any
// segment of the video from being indexed.
func (r *VideoReport) MarkFailed(reason string) {
	r.Failed = true
	r.FailureReason = reason
}

// String renders a one-line summary suitable for run logs.
func (r *VideoReport) String() string {
	if r.Failed {
		return fmt.Sprintf("%s: FAILED (%s)", r.FileName, r.FailureReason)
	}
	return fmt.Sprintf("%s: %d/%d segments indexed, %d degraded modalities, %d unindexed",
		r.FileName, r.SegmentsIndexed, r.SegmentsPlanned, r.DegradedModalities, r.UnindexedSegments)
}

// IngestReport aggregates the per-video reports for one ingestion run.
type IngestReport struct {
	Videos []*VideoReport `json:"videos"`
}

// Add appends a video report.
func (r *IngestReport) Add(video *VideoReport) {
	r.Videos = append(r.Videos, video)
}

// FailedCount returns the number of videos that failed entirely. A nonzero
// count maps to a nonzero process exit code.
func (r *IngestReport) FailedCount() int {
	n := 0
	for _, v := range r.Videos {
		if v.Failed {
			n++
		}
	}
	return n
}

// IndexedSegments returns the total number of segments indexed in the run.
func (r *IngestReport) IndexedSegments() int {
	n := 0
	for _, v := range r.Videos {
		n += v.SegmentsIndexed
	}
	return n
}
