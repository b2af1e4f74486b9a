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

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"

	"github.com/avelar/news-video-search/internal/config"
	"github.com/avelar/news-video-search/internal/core/model"
)

const baseTOML = `
[application]
video_dir = "/srv/videos"

[storage]
vector_db_dir = "/srv/index"
temp_audio_dir = "/srv/audio"
tags_file = "/srv/tags.json"

[segmenter]
window_seconds = 30.0
stride_seconds = 15.0
`

const overlayTOML = `
[segmenter]
stride_seconds = 5.0

[search]
top_k = 7
`

// writeConfigDir lays out a config directory and points the loader at it.
func writeConfigDir(t *testing.T, base, overlay string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(base), 0o644))
	if overlay != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(overlay), 0o644))
	}
	t.Setenv(config.EnvConfigFilePrefix, dir+string(os.PathSeparator))
	t.Setenv(config.EnvConfigRuntime, "test")
}

func validConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Application.VideoDir = "/srv/videos"
	cfg.Storage.VectorDBDir = "/srv/index"
	cfg.Storage.TempAudioDir = "/srv/audio"
	cfg.Storage.TagsFile = "/srv/tags.json"
	for _, name := range []string{
		config.ModelTranscriber,
		config.ModelVision,
		config.ModelAnnotator,
		config.ModelEmbedder,
		config.ModelGenerator,
	} {
		cfg.Models[name] = config.AIModel{Model: "m", MaxRequestsPerMinute: 30}
	}
	return cfg
}

func TestLoadConfigOverlaysRuntimeFile(t *testing.T) {
	writeConfigDir(t, baseTOML, overlayTOML)

	cfg := config.NewConfig()
	require.NoError(t, config.LoadConfig(cfg))

	// Base file values survive unless the overlay touches them.
	assert.Equal(t, "/srv/videos", cfg.Application.VideoDir)
	assert.Equal(t, float64(30), cfg.Segmenter.WindowSeconds)
	// Overlay wins where it sets a value.
	assert.Equal(t, float64(5), cfg.Segmenter.StrideSeconds)
	assert.Equal(t, 7, cfg.Search.TopK)
	// Struct defaults fill what neither file sets.
	assert.Equal(t, float64(1000), cfg.FrameSampler.SceneChangeThreshold)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
}

func TestLoadConfigMissingFilesKeepsDefaults(t *testing.T) {
	t.Setenv(config.EnvConfigFilePrefix, t.TempDir()+string(os.PathSeparator))
	t.Setenv(config.EnvConfigRuntime, "test")

	cfg := config.NewConfig()
	require.NoError(t, config.LoadConfig(cfg))
	assert.Equal(t, float64(20), cfg.Segmenter.WindowSeconds)
	assert.Equal(t, float64(10), cfg.Segmenter.StrideSeconds)
	assert.Equal(t, 3, cfg.Search.TopK)
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsStrideLargerThanWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Segmenter.WindowSeconds = 10
	cfg.Segmenter.StrideSeconds = 20

	err := cfg.Validate()
	var cfgErr *model.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestValidateRejectsMissingVideoDir(t *testing.T) {
	cfg := validConfig()
	cfg.Application.VideoDir = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingModelSection(t *testing.T) {
	cfg := validConfig()
	delete(cfg.Models, config.ModelEmbedder)

	err := cfg.Validate()
	require.Error(t, err)
	var cfgErr *model.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

// TestValidateRejectsInvalidModelEntry verifies that the per-model rules
// apply to every entry of the models map, not just the map's presence. A
// zero rate limit in particular must be rejected here rather than divide by
// zero when the rate limiter is built.
func TestValidateRejectsInvalidModelEntry(t *testing.T) {
	cases := []struct {
		name  string
		model config.AIModel
	}{
		{"empty model name", config.AIModel{Model: "", MaxRequestsPerMinute: 30}},
		{"zero rate limit", config.AIModel{Model: "m", MaxRequestsPerMinute: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Models[config.ModelGenerator] = tc.model

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *model.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestValidateRejectsEmptyTaxonomy(t *testing.T) {
	cfg := validConfig()
	cfg.Taxonomy = nil
	assert.Error(t, cfg.Validate())
}

func TestAPIKeyRequired(t *testing.T) {
	t.Setenv(config.EnvOpenAIAPIKey, "")

	_, err := config.APIKey()
	require.Error(t, err)

	t.Setenv(config.EnvOpenAIAPIKey, "sk-test")
	key, err := config.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}

func TestBatchSizeOrDefault(t *testing.T) {
	assert.Equal(t, 16, config.AIModel{}.BatchSizeOrDefault())
	assert.Equal(t, 8, config.AIModel{BatchSize: 8}.BatchSizeOrDefault())
}
