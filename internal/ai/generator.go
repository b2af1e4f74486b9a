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

	openai "github.com/sashabaranov/go-openai"
)

// chatGenerator implements Generator on a chat model through the quota
// decorator.
type chatGenerator struct {
	chat *QuotaAwareChatModel
}

// NewChatGenerator builds the live Generator.
func NewChatGenerator(chat *QuotaAwareChatModel) Generator {
	return &chatGenerator{chat: chat}
}

func (g *chatGenerator) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	}
	return g.chat.Generate(ctx, messages)
}
