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

// Package testutil provides fake collaborators and environment helpers for
// the test suite. The fakes are deterministic and record their calls so
// tests can assert on degradation and retry behavior without network access.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/avelar/news-video-search/internal/core/model"
)

// FakeTranscriber returns canned transcript spans or a fixed error.
type FakeTranscriber struct {
	Spans []model.TranscriptSpan
	Err   error
	Calls int
}

func (f *FakeTranscriber) Transcribe(_ context.Context, _ string) ([]model.TranscriptSpan, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Spans, nil
}

// FakeVision serves both the caption and OCR roles. Captions are numbered
// by call so tests can tell a fresh description from a reused one.
type FakeVision struct {
	mu            sync.Mutex
	CaptionErr    error
	OCRErr        error
	OCRText       string
	DescribeCalls int
	OCRCalls      int
}

func (f *FakeVision) Describe(_ context.Context, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DescribeCalls++
	if f.CaptionErr != nil {
		return "", f.CaptionErr
	}
	return fmt.Sprintf("caption %d", f.DescribeCalls), nil
}

func (f *FakeVision) ExtractText(_ context.Context, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OCRCalls++
	if f.OCRErr != nil {
		return "", f.OCRErr
	}
	return f.OCRText, nil
}

// FakeAnnotator serves the entity and tag roles with fixed responses.
type FakeAnnotator struct {
	mu          sync.Mutex
	EntityList  []model.Entity
	EntityErr   error
	TagList     []string
	TagErr      error
	EntityCalls int
	TagCalls    int
	TaggedTexts []string
}

func (f *FakeAnnotator) Entities(_ context.Context, _ string) ([]model.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EntityCalls++
	if f.EntityErr != nil {
		return nil, f.EntityErr
	}
	return f.EntityList, nil
}

func (f *FakeAnnotator) Tags(_ context.Context, text string, _ []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TagCalls++
	f.TaggedTexts = append(f.TaggedTexts, text)
	if f.TagErr != nil {
		return nil, f.TagErr
	}
	return f.TagList, nil
}

// FakeEmbedder returns one constant-dimension vector per input, or a fixed
// error. Vectors vary by input index so similarity ordering is observable.
type FakeEmbedder struct {
	Err   error
	Calls int
}

func (f *FakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, float32(i), 0}
	}
	return out, nil
}

// FakeGenerator echoes a canned answer and records its prompts.
type FakeGenerator struct {
	Answer     string
	Err        error
	Calls      int
	LastSystem string
	LastUser   string
}

func (f *FakeGenerator) Generate(_ context.Context, systemPrompt string, userPrompt string) (string, error) {
	f.Calls++
	f.LastSystem = systemPrompt
	f.LastUser = userPrompt
	if f.Err != nil {
		return "", f.Err
	}
	return f.Answer, nil
}

// FakeFrameSource serves synthetic frames. Gray frames come from the
// GrayFrames map keyed by the requested timestamp; missing keys reuse
// DefaultGray. JPEG frames are a fixed marker payload.
type FakeFrameSource struct {
	GrayFrames  map[float64][]byte
	DefaultGray []byte
	GrayErr     error
	JPEGErr     error
	AudioErr    error
	JPEGCalls   int
	AudioCalls  int
}

func (f *FakeFrameSource) FrameJPEG(_ context.Context, _ string, _ float64) ([]byte, error) {
	f.JPEGCalls++
	if f.JPEGErr != nil {
		return nil, f.JPEGErr
	}
	return []byte("jpeg"), nil
}

func (f *FakeFrameSource) FrameGray64(_ context.Context, _ string, atSeconds float64) ([]byte, error) {
	if f.GrayErr != nil {
		return nil, f.GrayErr
	}
	if frame, ok := f.GrayFrames[atSeconds]; ok {
		return frame, nil
	}
	return f.DefaultGray, nil
}

func (f *FakeFrameSource) ExtractAudio(_ context.Context, _ string, outPath string) error {
	f.AudioCalls++
	return f.AudioErr
}

// UniformGray returns a full gray frame filled with a single value.
func UniformGray(value byte, size int) []byte {
	frame := make([]byte, size)
	for i := range frame {
		frame[i] = value
	}
	return frame
}
