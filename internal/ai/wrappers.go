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
	"strings"
	"time"

	"github.com/avelar/news-video-search/internal/config"
	"github.com/avelar/news-video-search/internal/core/model"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

const (
	// MeterName is the instrumentation scope for collaborator metrics.
	MeterName = "github.com/avelar/news-video-search"
	// MaxRetries bounds how many times a failed call is reattempted before
	// the error surfaces as a CollaboratorError.
	MaxRetries = 3
	// retryBackoff is the base delay between attempts; attempt n waits
	// n times this long.
	retryBackoff = 2 * time.Second
)

// QuotaAwareChatModel decorates the chat completion API with client-side
// rate limiting, bounded retries, and token accounting. Hosted model
// quotas are per minute, so the limiter refills at the configured
// requests-per-minute rate with a burst of one.
type QuotaAwareChatModel struct {
	client       *openai.Client
	logicalName  string
	cfg          config.AIModel
	limiter      *rate.Limiter
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	retryCounter metric.Int64Counter
}

// NewQuotaAwareChatModel builds the decorator for one configured model.
func NewQuotaAwareChatModel(client *openai.Client, logicalName string, cfg config.AIModel) *QuotaAwareChatModel {
	meter := otel.Meter(MeterName)

	inputTokens, err := meter.Int64Counter(fmt.Sprintf("%s.tokens.input", logicalName))
	if err != nil {
		log.Printf("error creating input token counter for model %q: %v\n", logicalName, err)
	}
	outputTokens, err := meter.Int64Counter(fmt.Sprintf("%s.tokens.output", logicalName))
	if err != nil {
		log.Printf("error creating output token counter for model %q: %v\n", logicalName, err)
	}
	retryCounter, err := meter.Int64Counter(fmt.Sprintf("%s.counter.retries", logicalName))
	if err != nil {
		log.Printf("error creating retry counter for model %q: %v\n", logicalName, err)
	}

	return &QuotaAwareChatModel{
		client:       client,
		logicalName:  logicalName,
		cfg:          cfg,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MaxRequestsPerMinute)), 1),
		inputTokens:  inputTokens,
		outputTokens: outputTokens,
		retryCounter: retryCounter,
	}
}

// Generate sends one chat completion request and returns the first choice's
// text. Each attempt waits for a rate limiter token first; transient
// failures are retried with linear backoff up to MaxRetries.
func (q *QuotaAwareChatModel) Generate(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			q.retryCounter.Add(ctx, 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
		if err := q.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := q.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       q.cfg.Model,
			Messages:    messages,
			Temperature: q.cfg.Temperature,
			MaxTokens:   q.cfg.MaxTokens,
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion from model %s", q.cfg.Model)
			continue
		}

		q.inputTokens.Add(ctx, int64(resp.Usage.PromptTokens))
		q.outputTokens.Add(ctx, int64(resp.Usage.CompletionTokens))
		return resp.Choices[0].Message.Content, nil
	}
	return "", &model.CollaboratorError{Collaborator: q.logicalName, Err: lastErr}
}

// StripJSONFence removes the markdown code fences chat models wrap JSON
// responses in.
func StripJSONFence(in string) string {
	out := strings.TrimSpace(in)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
