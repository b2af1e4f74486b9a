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
	"github.com/avelar/news-video-search/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// Clients bundles every collaborator the pipeline needs, built once at
// startup and shared by all workers. Tests swap individual fields for
// fakes.
type Clients struct {
	Transcriber      Transcriber
	VisualDescriber  VisualDescriber
	TextExtractor    TextExtractor
	EntityRecognizer EntityRecognizer
	TopicTagger      TopicTagger
	Embedder         Embedder
	Generator        Generator
}

// NewClients wires the live collaborators from the validated configuration
// and API key. Each logical model gets its own quota decorator so a chatty
// annotator cannot starve the generator of rate tokens.
func NewClients(cfg *config.Config, apiKey string) *Clients {
	client := openai.NewClient(apiKey)

	visionChat := NewQuotaAwareChatModel(client, config.ModelVision, cfg.Models[config.ModelVision])
	annotatorChat := NewQuotaAwareChatModel(client, config.ModelAnnotator, cfg.Models[config.ModelAnnotator])
	generatorChat := NewQuotaAwareChatModel(client, config.ModelGenerator, cfg.Models[config.ModelGenerator])

	vision := NewVisionModel(visionChat, cfg.PromptTemplates.Caption, cfg.PromptTemplates.OCR)
	annotator := NewChatAnnotator(annotatorChat, cfg.PromptTemplates.Entities, cfg.PromptTemplates.Tags)

	return &Clients{
		Transcriber:      NewWhisperTranscriber(client, cfg.Models[config.ModelTranscriber]),
		VisualDescriber:  vision,
		TextExtractor:    vision,
		EntityRecognizer: annotator,
		TopicTagger:      annotator,
		Embedder:         NewOpenAIEmbedder(client, cfg.Models[config.ModelEmbedder]),
		Generator:        NewChatGenerator(generatorChat),
	}
}
