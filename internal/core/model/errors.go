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

package model

import "fmt"

// The error taxonomy separates failures by blast radius. ConfigurationError
// is fatal before any processing starts. MediaReadError and
// CollaboratorError degrade a single modality of a single segment.
// IndexingError leaves a segment unindexed while the run continues.

// ConfigurationError reports an invalid or missing configuration value.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigurationError builds a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// MediaReadError reports a failure reading or decoding media bytes, such as
// a frame or audio extraction that ffmpeg could not complete.
type MediaReadError struct {
	Op  string
	Err error
}

func (e *MediaReadError) Error() string {
	return fmt.Sprintf("media read error during %s: %v", e.Op, e.Err)
}

func (e *MediaReadError) Unwrap() error {
	return e.Err
}

// CollaboratorError reports a failure from an external model service after
// the caller's retry budget is exhausted.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator %s failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IndexingError reports a failure to embed or store a segment record.
type IndexingError struct {
	Key string
	Err error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing error for %s: %v", e.Key, e.Err)
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}
