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
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// VisionModel implements both VisualDescriber and TextExtractor on a
// multimodal chat model. Frames travel inline as base64 data URLs; news
// frames are small enough that the upload API is not worth its extra
// round trip.
type VisionModel struct {
	chat          *QuotaAwareChatModel
	captionPrompt string
	ocrPrompt     string
}

// NewVisionModel builds the live vision collaborator with the caption and
// OCR prompt templates from configuration.
func NewVisionModel(chat *QuotaAwareChatModel, captionPrompt string, ocrPrompt string) *VisionModel {
	return &VisionModel{
		chat:          chat,
		captionPrompt: captionPrompt,
		ocrPrompt:     ocrPrompt,
	}
}

// Describe returns a one-paragraph caption of the frame's visual content.
func (v *VisionModel) Describe(ctx context.Context, frameJPEG []byte) (string, error) {
	return v.askAboutFrame(ctx, v.captionPrompt, frameJPEG)
}

// ExtractText returns any legible on-screen text in the frame, or an empty
// string when there is none.
func (v *VisionModel) ExtractText(ctx context.Context, frameJPEG []byte) (string, error) {
	return v.askAboutFrame(ctx, v.ocrPrompt, frameJPEG)
}

func (v *VisionModel) askAboutFrame(ctx context.Context, prompt string, frameJPEG []byte) (string, error) {
	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(frameJPEG))
	messages := []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: prompt,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		},
	}
	return v.chat.Generate(ctx, messages)
}
