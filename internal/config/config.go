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

// Package config defines the application configuration, loaded from TOML
// files with an environment-specific overlay, and validates it before any
// processing starts. Every tunable of the pipeline lives here: library
// paths, windowing parameters, scene-change threshold, model names, rate
// limits, and prompt templates.
package config

import "github.com/avelar/news-video-search/internal/core/model"

// Application holds general application settings.
type Application struct {
	Name           string `toml:"name"`
	VideoDir       string `toml:"video_dir" validate:"required"`
	ThreadPoolSize int    `toml:"thread_pool_size" validate:"min=1"`
}

// Storage holds the local data directories and files the pipeline owns.
type Storage struct {
	VectorDBDir  string `toml:"vector_db_dir" validate:"required"`
	TempAudioDir string `toml:"temp_audio_dir" validate:"required"`
	TagsFile     string `toml:"tags_file" validate:"required"`
}

// Segmenter holds the windowing parameters. The stride is the single
// authoritative advance between windows; overlap is window minus stride.
type Segmenter struct {
	WindowSeconds float64 `toml:"window_seconds" validate:"gt=0"`
	StrideSeconds float64 `toml:"stride_seconds" validate:"gt=0,ltefield=WindowSeconds"`
	MaxSegments   int     `toml:"max_segments" validate:"min=0"`
}

// FrameSampler holds the scene-change detection parameters.
type FrameSampler struct {
	SceneChangeThreshold float64 `toml:"scene_change_threshold" validate:"gte=0"`
}

// FFmpeg holds the paths to the external media binaries.
type FFmpeg struct {
	FFmpegPath  string `toml:"ffmpeg_path" validate:"required"`
	FFprobePath string `toml:"ffprobe_path" validate:"required"`
}

// AIModel configures one OpenAI-hosted model together with its client-side
// quota policy.
type AIModel struct {
	Model                string  `toml:"model" validate:"required"`
	MaxRequestsPerMinute int     `toml:"max_requests_per_minute" validate:"min=1"`
	MaxTokens            int     `toml:"max_tokens" validate:"min=0"`
	Temperature          float32 `toml:"temperature"`
	BatchSize            int     `toml:"batch_size" validate:"min=0"`
}

// PromptTemplates holds the text templates sent to the chat models. Each
// template is expanded with fmt.Sprintf style placeholders documented in
// the default configs.
type PromptTemplates struct {
	Caption  string `toml:"caption"`
	OCR      string `toml:"ocr"`
	Entities string `toml:"entities"`
	Tags     string `toml:"tags"`
	Answer   string `toml:"answer"`
}

// Search holds retrieval defaults.
type Search struct {
	TopK int `toml:"top_k" validate:"min=1"`
}

// Serve holds the HTTP server settings for serve mode.
type Serve struct {
	Addr           string `toml:"addr"`
	RescanSchedule string `toml:"rescan_schedule"`
}

// Config is the root of the application configuration.
type Config struct {
	Application     Application        `toml:"application"`
	Storage         Storage            `toml:"storage"`
	Segmenter       Segmenter          `toml:"segmenter"`
	FrameSampler    FrameSampler       `toml:"frame_sampler"`
	FFmpeg          FFmpeg             `toml:"ffmpeg"`
	Models          map[string]AIModel `toml:"models" validate:"dive"`
	PromptTemplates PromptTemplates    `toml:"prompt_templates"`
	Taxonomy        []string           `toml:"taxonomy"`
	Search          Search             `toml:"search"`
	Serve           Serve              `toml:"serve"`
}

// Logical model names expected in the [models] map.
const (
	ModelTranscriber = "transcriber"
	ModelVision      = "vision"
	ModelAnnotator   = "annotator"
	ModelEmbedder    = "embedder"
	ModelGenerator   = "generator"
)

// NewConfig creates a Config with initialized maps and the built-in
// defaults that the TOML files overlay.
func NewConfig() *Config {
	return &Config{
		Application: Application{
			Name:           "news-video-search",
			ThreadPoolSize: 2,
		},
		Segmenter: Segmenter{
			WindowSeconds: 20,
			StrideSeconds: 10,
		},
		FrameSampler: FrameSampler{
			SceneChangeThreshold: 1000,
		},
		FFmpeg: FFmpeg{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Models:   make(map[string]AIModel),
		Taxonomy: model.DefaultTaxonomy(),
		Search:   Search{TopK: 3},
		Serve: Serve{
			Addr:           ":8080",
			RescanSchedule: "@every 5m",
		},
	}
}
