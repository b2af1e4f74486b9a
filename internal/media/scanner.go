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

// Package media handles everything that touches video files on disk:
// discovering them in the library directory, probing their duration, and
// extracting frames and audio through ffmpeg.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// videoIDNamespace is the fixed UUID namespace for deriving video IDs.
// IDs are UUIDv5 hashes of the file name, so re-ingesting the same file
// produces the same ID and overwrites its previous records.
var videoIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// VideoID derives the deterministic ID for a video file name.
func VideoID(fileName string) string {
	return uuid.NewSHA1(videoIDNamespace, []byte(fileName)).String()
}

// Scanner discovers playable videos in a directory. Non-video files are
// skipped by sniffing magic bytes rather than trusting extensions.
type Scanner struct {
	FFprobePath string
}

// NewScanner builds a scanner that probes files with the given ffprobe
// binary.
func NewScanner(ffprobePath string) *Scanner {
	return &Scanner{FFprobePath: ffprobePath}
}

// Scan walks the directory (non-recursively, matching the flat library
// layout) and returns a VideoSource for every playable video. Files that
// fail the probe are logged and skipped; they do not abort the scan.
func (s *Scanner) Scan(ctx context.Context, dir string) ([]*model.VideoSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read video directory %s: %w", dir, err)
	}

	videos := make([]*model.VideoSource, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		isVideo, err := sniffVideo(path)
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		if !isVideo {
			continue
		}

		duration, frameRate, err := s.probe(ctx, path)
		if err != nil {
			slog.Warn("skipping unprobeable video", "path", path, "error", err)
			continue
		}
		if duration <= 0 {
			slog.Warn("skipping zero-duration video", "path", path)
			continue
		}

		videos = append(videos, &model.VideoSource{
			ID:        VideoID(entry.Name()),
			FileName:  entry.Name(),
			Path:      path,
			Duration:  duration,
			FrameRate: frameRate,
		})
	}
	return videos, nil
}

// sniffVideo reads the header bytes and checks the magic number.
func sniffVideo(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	// filetype only needs the first 261 bytes.
	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return false, err
	}
	return filetype.IsVideo(head[:n]), nil
}

// probeOutput matches ffprobe's JSON shape for the fields we request.
type probeOutput struct {
	Streams []struct {
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probe returns the duration in seconds and the average frame rate of the
// first video stream. A missing frame rate is reported as zero.
func (s *Scanner) probe(ctx context.Context, path string) (duration float64, frameRate float64, err error) {
	cmd := exec.CommandContext(ctx, s.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, &model.MediaReadError{Op: "probe", Err: err}
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, 0, &model.MediaReadError{Op: "probe", Err: err}
	}

	duration, err = strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, 0, &model.MediaReadError{Op: "probe", Err: fmt.Errorf("bad duration %q", parsed.Format.Duration)}
	}
	if len(parsed.Streams) > 0 {
		frameRate = parseFrameRate(parsed.Streams[0].AvgFrameRate)
	}
	return duration, frameRate, nil
}

// parseFrameRate converts ffprobe's fractional notation ("30000/1001")
// into frames per second, returning 0 when the value is absent or
// malformed.
func parseFrameRate(in string) float64 {
	parts := strings.SplitN(in, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
