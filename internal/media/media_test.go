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

package media_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"

	"github.com/avelar/news-video-search/internal/media"
)

func TestVideoIDIsDeterministic(t *testing.T) {
	a := media.VideoID("evening-news.mp4")
	b := media.VideoID("evening-news.mp4")
	c := media.VideoID("morning-news.mp4")

	assert.Equal(t, a, b)
	assert.True(t, a != c)

	// IDs are valid UUIDs.
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestMeanSquaredError(t *testing.T) {
	flat := func(v byte) []byte {
		out := make([]byte, media.GrayFrameBytes)
		for i := range out {
			out[i] = v
		}
		return out
	}

	assert.Equal(t, float64(0), media.MeanSquaredError(flat(7), flat(7)))
	assert.Equal(t, float64(100), media.MeanSquaredError(flat(10), flat(20)))

	// Mismatched or empty frames compare as maximally different.
	assert.Equal(t, float64(255*255), media.MeanSquaredError(flat(7), flat(7)[:100]))
	assert.Equal(t, float64(255*255), media.MeanSquaredError(nil, nil))
}

func TestScanSkipsNonVideoFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text, not media"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.mp4"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	s := media.NewScanner("ffprobe")
	videos, err := s.Scan(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, len(videos))
}

func TestScanMissingDirectory(t *testing.T) {
	s := media.NewScanner("ffprobe")
	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
