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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avelar/news-video-search/internal/core/model"
	openai "github.com/sashabaranov/go-openai"
)

// ChatAnnotator implements EntityRecognizer and TopicTagger on a chat
// model. Both prompts embed a marshaled few-shot example so the model
// answers in parsable JSON.
type ChatAnnotator struct {
	chat          *QuotaAwareChatModel
	entityPrompt  string
	tagPrompt     string
	systemMessage string
}

// NewChatAnnotator builds the live annotation collaborator.
func NewChatAnnotator(chat *QuotaAwareChatModel, entityPrompt string, tagPrompt string) *ChatAnnotator {
	return &ChatAnnotator{
		chat:          chat,
		entityPrompt:  entityPrompt,
		tagPrompt:     tagPrompt,
		systemMessage: "You are a news annotation service. Respond with JSON only, no prose.",
	}
}

// Entities extracts PERSON, ORG, and GPE entities from the text.
func (a *ChatAnnotator) Entities(ctx context.Context, text string) ([]model.Entity, error) {
	example, err := json.Marshal(model.GetExampleEntities())
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(a.entityPrompt, model.GetExampleEntityText(), string(example), text)

	out, err := a.ask(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var entities []model.Entity
	if err := json.Unmarshal([]byte(StripJSONFence(out)), &entities); err != nil {
		return nil, fmt.Errorf("unparsable entity response: %w", err)
	}

	kept := entities[:0]
	for _, e := range entities {
		switch e.Kind {
		case model.EntityPerson, model.EntityOrg, model.EntityGPE:
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// Tags assigns taxonomy labels to the text. Labels the model invents
// outside the taxonomy are dropped; matching is case-insensitive and the
// taxonomy's canonical casing wins.
func (a *ChatAnnotator) Tags(ctx context.Context, text string, taxonomy []string) ([]string, error) {
	example, err := json.Marshal(model.GetExampleTags())
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(a.tagPrompt, strings.Join(taxonomy, ", "), string(example), text)

	out, err := a.ask(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var raw []string
	if err := json.Unmarshal([]byte(StripJSONFence(out)), &raw); err != nil {
		return nil, fmt.Errorf("unparsable tag response: %w", err)
	}

	canonical := make(map[string]string, len(taxonomy))
	for _, label := range taxonomy {
		canonical[strings.ToLower(label)] = label
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if label, ok := canonical[strings.ToLower(strings.TrimSpace(t))]; ok {
			tags = append(tags, label)
		}
	}
	return tags, nil
}

func (a *ChatAnnotator) ask(ctx context.Context, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: a.systemMessage},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	return a.chat.Generate(ctx, messages)
}
