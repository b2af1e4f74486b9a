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

// Package model defines the core data structures for the application: the
// video and segment shapes that flow through the ingestion pipeline, the
// search result and answer shapes returned to callers, and the per-run
// ingest report.
package model

import "fmt"

// VideoSource describes one playable video file discovered in the library
// directory. The ID is deterministic for a given file name so that
// re-ingesting the same file overwrites its previous records.
type VideoSource struct {
	ID        string  `json:"id"`
	FileName  string  `json:"file_name"`
	Path      string  `json:"path"`
	Duration  float64 `json:"duration"`   // seconds
	FrameRate float64 `json:"frame_rate"` // frames per second, 0 when unknown
}

// Segment is one temporal window of a video, produced by the window planner.
// Start is inclusive, End exclusive, both in seconds from the start of the
// video.
type Segment struct {
	VideoID string  `json:"video_id"`
	Index   int     `json:"index"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// TranscriptSpan is a single timed span of speech returned by the
// transcription service.
type TranscriptSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Entity is a named entity extracted from a segment's fused text.
// Kind is one of "PERSON", "ORG", or "GPE".
type Entity struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Entity kinds recognized by the annotator.
const (
	EntityPerson = "PERSON"
	EntityOrg    = "ORG"
	EntityGPE    = "GPE"
)

// ModalityBundle carries the raw per-modality analysis results for one
// segment before fusion. Absent modalities are empty strings or nil slices;
// a bundle always exists for every planned segment, however degraded.
type ModalityBundle struct {
	Segment    Segment
	Transcript string
	Caption    string
	OCRText    string
	Entities   []Entity
	Tags       []string
}

// SegmentRecord is the fused, index-ready form of a segment. SearchText is
// the concatenated modality text that gets embedded; InsertSeq is assigned
// by the store on first insert and preserved across re-upserts so that
// equal-similarity search results rank deterministically.
type SegmentRecord struct {
	ID           string   `json:"id"`
	VideoID      string   `json:"video_id"`
	SegmentIndex int      `json:"segment_index"`
	Start        float64  `json:"start"`
	End          float64  `json:"end"`
	SearchText   string   `json:"search_text"`
	Entities     []Entity `json:"entities,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	InsertSeq    uint64   `json:"insert_seq"`
}

// RecordID builds the canonical store key for a segment.
func RecordID(videoID string, segmentIndex int) string {
	return fmt.Sprintf("%s:%d", videoID, segmentIndex)
}

// SegmentHit is one ranked retrieval result.
type SegmentHit struct {
	Record *SegmentRecord `json:"record"`
	Score  float64        `json:"score"`
}

// Citation points a generated answer back at a specific span of a specific
// video.
type Citation struct {
	VideoID string  `json:"video_id"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Answer is the synthesized response to a search query together with the
// provenance of every retrieved segment that grounded it.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}

// TagLabel is one entry of the persisted taxonomy file. The file is an
// ordered JSON list of these objects.
type TagLabel struct {
	Label string `json:"label"`
}
