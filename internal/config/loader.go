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

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/go-playground/validator/v10"
)

// Configuration loading is hierarchical: the base file is decoded first and
// an environment-specific file, selected by NVS_RUNTIME, overlays it. Both
// files are optional; the struct defaults apply to anything neither file
// sets.
const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "NVS_CONFIG_PREFIX"
	EnvConfigRuntime    = "NVS_RUNTIME"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig populates cfg from the base TOML file and the runtime overlay.
// The config directory comes from NVS_CONFIG_PREFIX; the runtime name from
// NVS_RUNTIME, defaulting to "local".
func LoadConfig(cfg *Config) error {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "local"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		if _, err := toml.DecodeFile(baseConfigFileName, cfg); err != nil {
			return model.NewConfigurationError("failed to decode %s: %v", baseConfigFileName, err)
		}
	}
	if fileExists(envConfigFileName) {
		if _, err := toml.DecodeFile(envConfigFileName, cfg); err != nil {
			return model.NewConfigurationError("failed to decode %s: %v", envConfigFileName, err)
		}
	}
	return nil
}

// Validate checks every struct tag constraint plus the cross-cutting rules
// the tags cannot express. It must be called after flag overrides are
// applied, before any video is touched.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return model.NewConfigurationError("invalid value for %s (constraint %q)", first.Namespace(), first.Tag())
		}
		return model.NewConfigurationError("invalid configuration: %v", err)
	}

	for _, name := range []string{ModelTranscriber, ModelVision, ModelAnnotator, ModelEmbedder, ModelGenerator} {
		if _, ok := c.Models[name]; !ok {
			return model.NewConfigurationError("missing [models.%s] section", name)
		}
	}
	if len(c.Taxonomy) == 0 {
		return model.NewConfigurationError("taxonomy must list at least one label")
	}
	return nil
}

// APIKey reads the OpenAI API key from the environment. A missing key is a
// fatal startup error with an explicit message rather than a confusing
// authentication failure mid-run.
func APIKey() (string, error) {
	key := os.Getenv(EnvOpenAIAPIKey)
	if key == "" {
		return "", model.NewConfigurationError("%s is not set; export it before running", EnvOpenAIAPIKey)
	}
	return key, nil
}

// BatchSizeOrDefault returns the embedder batch size, defaulting to 16.
func (m AIModel) BatchSizeOrDefault() int {
	if m.BatchSize <= 0 {
		return 16
	}
	return m.BatchSize
}

// ResolutionOrder renders the config file resolution order for startup logs.
func ResolutionOrder() string {
	prefix := os.Getenv(EnvConfigFilePrefix)
	runtime := os.Getenv(EnvConfigRuntime)
	if runtime == "" {
		runtime = "local"
	}
	return fmt.Sprintf("%s%s%s then %s%s%s%s%s",
		prefix, ConfigFileBaseName, ConfigFileExtension,
		prefix, ConfigFileBaseName, ConfigSeparator, runtime, ConfigFileExtension)
}
