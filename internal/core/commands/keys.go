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

// Package commands provides the concrete pipeline commands that ingest one
// video: window planning, audio extraction, transcription, scene analysis,
// annotation, fusion, and indexing. Commands communicate through named
// context keys defined here, in addition to the chain's default piping.
package commands

// GetVideoSourceParamName returns the context key holding the
// *model.VideoSource being ingested.
func GetVideoSourceParamName() string { return "__video_source__" }

// GetAudioFileParamName returns the context key holding the path of the
// extracted temp audio file.
func GetAudioFileParamName() string { return "__audio_file__" }

// GetTranscriptParamName returns the context key holding the video's
// []model.TranscriptSpan.
func GetTranscriptParamName() string { return "__transcript__" }

// GetSegmentsParamName returns the context key holding the planned
// []model.Segment.
func GetSegmentsParamName() string { return "__segments__" }

// GetBundlesParamName returns the context key holding the per-segment
// []*model.ModalityBundle.
func GetBundlesParamName() string { return "__modality_bundles__" }

// GetRecordsParamName returns the context key holding the fused
// []*model.SegmentRecord.
func GetRecordsParamName() string { return "__segment_records__" }

// GetReportParamName returns the context key holding the video's
// *model.VideoReport.
func GetReportParamName() string { return "__video_report__" }
