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

// Package ai wraps the hosted model services the pipeline collaborates
// with. Every collaborator sits behind a small interface so the pipeline
// commands and services can be tested with fakes, and every live
// implementation goes through a rate-limited, retrying decorator.
package ai

import (
	"context"

	"github.com/avelar/news-video-search/internal/core/model"
)

// Transcriber converts an audio file into timed transcript spans.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSpan, error)
}

// VisualDescriber produces a natural-language caption for a video frame.
type VisualDescriber interface {
	Describe(ctx context.Context, frameJPEG []byte) (string, error)
}

// TextExtractor reads on-screen text (tickers, lower thirds, headlines)
// out of a video frame.
type TextExtractor interface {
	ExtractText(ctx context.Context, frameJPEG []byte) (string, error)
}

// EntityRecognizer extracts named entities from a segment's text.
type EntityRecognizer interface {
	Entities(ctx context.Context, text string) ([]model.Entity, error)
}

// TopicTagger assigns labels from the allowed taxonomy to a segment's text.
// Labels outside the taxonomy are discarded.
type TopicTagger interface {
	Tags(ctx context.Context, text string, taxonomy []string) ([]string, error)
}

// Embedder converts a batch of texts into embedding vectors, one per input,
// in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a free-text completion from a system and user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
