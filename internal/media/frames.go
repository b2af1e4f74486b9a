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

package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/avelar/news-video-search/internal/core/model"
)

// Grayscale comparison frames are fixed at 64x64 single-channel pixels.
const (
	GraySide       = 64
	GrayFrameBytes = GraySide * GraySide
)

// FrameSource extracts single frames from a video. The pipeline's scene
// analysis depends only on this interface so tests can script frames.
type FrameSource interface {
	// FrameJPEG extracts the frame nearest the timestamp as JPEG bytes.
	FrameJPEG(ctx context.Context, videoPath string, ts float64) ([]byte, error)
	// FrameGray64 extracts the same frame downscaled to 64x64 grayscale
	// raw bytes, used for scene-change comparison.
	FrameGray64(ctx context.Context, videoPath string, ts float64) ([]byte, error)
}

// AudioSource extracts a video's audio track to a file.
type AudioSource interface {
	ExtractAudio(ctx context.Context, videoPath string, outPath string) error
}

// Extractor is the live FrameSource and AudioSource backed by the ffmpeg
// binary.
type Extractor struct {
	FFmpegPath string
}

// NewExtractor builds an extractor using the given ffmpeg binary.
func NewExtractor(ffmpegPath string) *Extractor {
	return &Extractor{FFmpegPath: ffmpegPath}
}

// FrameJPEG seeks to the timestamp and emits one JPEG frame on stdout.
// Seeking before the input is fast (keyframe seek) and accurate enough for
// midpoint sampling.
func (e *Extractor) FrameJPEG(ctx context.Context, videoPath string, ts float64) ([]byte, error) {
	out, err := e.run(ctx,
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(ts),
		"-i", videoPath,
		"-frames:v", "1",
		"-c:v", "mjpeg",
		"-f", "image2",
		"pipe:1",
	)
	if err != nil {
		return nil, &model.MediaReadError{Op: "frame extraction", Err: err}
	}
	return out, nil
}

// FrameGray64 seeks to the timestamp and emits one 64x64 grayscale raw
// frame on stdout.
func (e *Extractor) FrameGray64(ctx context.Context, videoPath string, ts float64) ([]byte, error) {
	out, err := e.run(ctx,
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(ts),
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", GraySide, GraySide),
		"-pix_fmt", "gray",
		"-f", "rawvideo",
		"pipe:1",
	)
	if err != nil {
		return nil, &model.MediaReadError{Op: "gray frame extraction", Err: err}
	}
	if len(out) != GrayFrameBytes {
		return nil, &model.MediaReadError{
			Op:  "gray frame extraction",
			Err: fmt.Errorf("expected %d gray bytes, got %d", GrayFrameBytes, len(out)),
		}
	}
	return out, nil
}

// ExtractAudio writes the video's audio track as MP3 to outPath,
// overwriting any existing file.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath string, outPath string) error {
	_, err := e.run(ctx,
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "4",
		"-y", outPath,
	)
	if err != nil {
		return &model.MediaReadError{Op: "audio extraction", Err: err}
	}
	return nil
}

func (e *Extractor) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func formatSeconds(ts float64) string {
	return fmt.Sprintf("%.3f", ts)
}

// MeanSquaredError computes the average squared pixel difference between
// two grayscale frames. Frames of different sizes compare as maximally
// different, which forces a fresh visual analysis.
func MeanSquaredError(a, b []byte) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return float64(255 * 255)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum / float64(len(a))
}
