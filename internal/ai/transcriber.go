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

package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/avelar/news-video-search/internal/config"
	"github.com/avelar/news-video-search/internal/core/model"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

// whisperTranscriber implements Transcriber on the hosted speech-to-text
// API. It requests verbose JSON so the response carries per-segment
// timestamps, which the pipeline needs to slice the transcript into
// overlapping windows.
type whisperTranscriber struct {
	client       *openai.Client
	cfg          config.AIModel
	limiter      *rate.Limiter
	retryCounter metric.Int64Counter
}

// NewWhisperTranscriber builds the live Transcriber for the configured
// transcription model.
func NewWhisperTranscriber(client *openai.Client, cfg config.AIModel) Transcriber {
	meter := otel.Meter(MeterName)
	retryCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.retries", config.ModelTranscriber))
	if err != nil {
		log.Printf("error creating retry counter for transcriber: %v\n", err)
	}
	return &whisperTranscriber{
		client:       client,
		cfg:          cfg,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MaxRequestsPerMinute)), 1),
		retryCounter: retryCounter,
	}
}

// Transcribe uploads the audio file and returns its timed spans. An audio
// track with no speech yields an empty slice, not an error.
func (w *whisperTranscriber) Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSpan, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			w.retryCounter.Add(ctx, 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    w.cfg.Model,
			FilePath: audioPath,
			Format:   openai.AudioResponseFormatVerboseJSON,
		})
		if err != nil {
			lastErr = err
			continue
		}

		spans := make([]model.TranscriptSpan, 0, len(resp.Segments))
		for _, seg := range resp.Segments {
			spans = append(spans, model.TranscriptSpan{
				Start: seg.Start,
				End:   seg.End,
				Text:  seg.Text,
			})
		}
		return spans, nil
	}
	return nil, &model.CollaboratorError{Collaborator: config.ModelTranscriber, Err: lastErr}
}
