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

// Factory functions for hardcoded example instances of the data models.
// These are marshaled into prompts as few-shot examples so the chat model
// returns JSON that is consistent, correctly formatted, and parsable.
package model

// GetExampleEntities creates the sample entity list embedded in the entity
// extraction prompt. It covers all three recognized kinds so the model sees
// the full label set in context.
func GetExampleEntities() []Entity {
	return []Entity{
		{Name: "Antonio Guterres", Kind: EntityPerson},
		{Name: "United Nations", Kind: EntityOrg},
		{Name: "Geneva", Kind: EntityGPE},
	}
}

// GetExampleEntityText is the passage the example entities were drawn from,
// included alongside GetExampleEntities in the prompt.
func GetExampleEntityText() string {
	return "Secretary-General Antonio Guterres addressed the United Nations " +
		"assembly in Geneva on Tuesday, calling for an immediate ceasefire."
}

// GetExampleTags creates the sample tag assignment embedded in the topic
// tagging prompt.
func GetExampleTags() []string {
	return []string{"Politics", "Conflict/War"}
}

// DefaultTaxonomy returns the built-in topic taxonomy used when no
// generated taxonomy file is present.
func DefaultTaxonomy() []string {
	return []string{
		"Politics",
		"Conflict/War",
		"Sports",
		"Economy",
		"Technology",
		"Weather",
		"Health",
		"Entertainment",
	}
}
