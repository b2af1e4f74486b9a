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

// openaiEmbedder implements Embedder on the hosted embeddings API. One
// Embed call is one API request; callers batch their inputs to the
// configured batch size.
type openaiEmbedder struct {
	client       *openai.Client
	cfg          config.AIModel
	limiter      *rate.Limiter
	inputTokens  metric.Int64Counter
	retryCounter metric.Int64Counter
}

// NewOpenAIEmbedder builds the live Embedder for the configured model.
func NewOpenAIEmbedder(client *openai.Client, cfg config.AIModel) Embedder {
	meter := otel.Meter(MeterName)
	inputTokens, err := meter.Int64Counter(fmt.Sprintf("%s.tokens.input", config.ModelEmbedder))
	if err != nil {
		log.Printf("error creating input token counter for embedder: %v\n", err)
	}
	retryCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.retries", config.ModelEmbedder))
	if err != nil {
		log.Printf("error creating retry counter for embedder: %v\n", err)
	}
	return &openaiEmbedder{
		client:       client,
		cfg:          cfg,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MaxRequestsPerMinute)), 1),
		inputTokens:  inputTokens,
		retryCounter: retryCounter,
	}
}

// Embed returns one vector per input text, in input order.
func (e *openaiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			e.retryCounter.Add(ctx, 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: openai.EmbeddingModel(e.cfg.Model),
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
			continue
		}

		e.inputTokens.Add(ctx, int64(resp.Usage.PromptTokens))

		// The API reports each vector's input index; place by index rather
		// than trusting response order.
		out := make([][]float32, len(texts))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(out) {
				return nil, fmt.Errorf("embedding index %d out of range", d.Index)
			}
			out[d.Index] = d.Embedding
		}
		return out, nil
	}
	return nil, &model.CollaboratorError{Collaborator: config.ModelEmbedder, Err: lastErr}
}
