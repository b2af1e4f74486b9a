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

// Package store persists fused segment records and their embedding vectors
// in an embedded badger database and answers brute-force cosine similarity
// queries over them. The library is small enough (hours of news, not
// years) that a linear scan outperforms the operational cost of an ANN
// index.
package store

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

// StoredSegment is the on-disk shape of one indexed segment.
type StoredSegment struct {
	ID           string `badgerhold:"key"`
	VideoID      string `badgerhold:"index"`
	SegmentIndex int
	Start        float64
	End          float64
	SearchText   string
	Entities     []model.Entity
	Tags         []string
	Embedding    []float32
	InsertSeq    uint64
	IndexedAt    time.Time
}

// seqState is the single persisted insertion-sequence counter.
type seqState struct {
	Next uint64
}

const seqKey = "insert-seq"

// SegmentStore wraps the badger database. The mutex serializes upserts so
// sequence assignment stays unique under the ingest worker pool.
type SegmentStore struct {
	store *badgerhold.Store
	mu    sync.Mutex
}

// Open creates or opens the store directory.
func Open(dir string) (*SegmentStore, error) {
	options := badgerhold.DefaultOptions
	options.Options = badger.DefaultOptions(dir).WithLogger(nil)
	bh, err := badgerhold.Open(options)
	if err != nil {
		return nil, err
	}
	return &SegmentStore{store: bh}, nil
}

// Close flushes and closes the underlying database.
func (s *SegmentStore) Close() error {
	return s.store.Close()
}

// Upsert writes a segment record and its embedding under the canonical
// "{video_id}:{segment_index}" key. Updating a record that is still present
// keeps its original insertion sequence so retrieval tie-breaks stay stable.
// Re-ingestion deletes a video's records first, so those get fresh sequence
// numbers; ordering stays deterministic either way.
func (s *SegmentStore) Upsert(rec *model.SegmentRecord, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.RecordID(rec.VideoID, rec.SegmentIndex)

	var seq uint64
	var existing StoredSegment
	err := s.store.Get(key, &existing)
	switch {
	case err == nil:
		seq = existing.InsertSeq
	case errors.Is(err, badgerhold.ErrNotFound):
		seq, err = s.nextSeq()
		if err != nil {
			return &model.IndexingError{Key: key, Err: err}
		}
	default:
		return &model.IndexingError{Key: key, Err: err}
	}

	stored := StoredSegment{
		ID:           key,
		VideoID:      rec.VideoID,
		SegmentIndex: rec.SegmentIndex,
		Start:        rec.Start,
		End:          rec.End,
		SearchText:   rec.SearchText,
		Entities:     rec.Entities,
		Tags:         rec.Tags,
		Embedding:    embedding,
		InsertSeq:    seq,
		IndexedAt:    time.Now().UTC(),
	}
	if err := s.store.Upsert(key, &stored); err != nil {
		return &model.IndexingError{Key: key, Err: err}
	}
	rec.InsertSeq = seq
	return nil
}

// nextSeq increments and persists the insertion counter. Callers hold the
// store mutex.
func (s *SegmentStore) nextSeq() (uint64, error) {
	var state seqState
	err := s.store.Get(seqKey, &state)
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return 0, err
	}
	seq := state.Next
	state.Next++
	if err := s.store.Upsert(seqKey, &state); err != nil {
		return 0, err
	}
	return seq, nil
}

// Query ranks every stored segment by cosine similarity to the vector and
// returns the top k hits. Ties rank by insertion sequence. An empty store
// returns an empty slice.
func (s *SegmentStore) Query(vector []float32, k int) ([]*model.SegmentHit, error) {
	if k <= 0 {
		return []*model.SegmentHit{}, nil
	}

	var all []StoredSegment
	if err := s.store.Find(&all, nil); err != nil {
		return nil, err
	}

	hits := make([]*model.SegmentHit, 0, len(all))
	for i := range all {
		seg := &all[i]
		hits = append(hits, &model.SegmentHit{
			Record: toRecord(seg),
			Score:  CosineSimilarity(vector, seg.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.InsertSeq < hits[j].Record.InsertSeq
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Get retrieves one record by video ID and segment index, or nil when it
// does not exist.
func (s *SegmentStore) Get(videoID string, segmentIndex int) (*model.SegmentRecord, error) {
	var stored StoredSegment
	err := s.store.Get(model.RecordID(videoID, segmentIndex), &stored)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toRecord(&stored), nil
}

// Count returns the number of indexed segments.
func (s *SegmentStore) Count() (int, error) {
	n, err := s.store.Count(&StoredSegment{}, nil)
	return int(n), err
}

// DeleteVideo removes every record of a video. Ingestion calls this before
// re-indexing so a shortened video leaves no stale tail segments behind.
func (s *SegmentStore) DeleteVideo(videoID string) error {
	return s.store.DeleteMatching(&StoredSegment{}, badgerhold.Where("VideoID").Eq(videoID))
}

// Videos returns the distinct video IDs present in the index.
func (s *SegmentStore) Videos() ([]string, error) {
	var all []StoredSegment
	if err := s.store.Find(&all, nil); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for i := range all {
		if !seen[all[i].VideoID] {
			seen[all[i].VideoID] = true
			out = append(out, all[i].VideoID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SampleByVideo returns up to limit records of one video in segment order,
// used by taxonomy generation.
func (s *SegmentStore) SampleByVideo(videoID string, limit int) ([]*model.SegmentRecord, error) {
	var stored []StoredSegment
	q := badgerhold.Where("VideoID").Eq(videoID).SortBy("SegmentIndex")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := s.store.Find(&stored, q); err != nil {
		return nil, err
	}
	out := make([]*model.SegmentRecord, 0, len(stored))
	for i := range stored {
		out = append(out, toRecord(&stored[i]))
	}
	return out, nil
}

func toRecord(s *StoredSegment) *model.SegmentRecord {
	return &model.SegmentRecord{
		ID:           s.ID,
		VideoID:      s.VideoID,
		SegmentIndex: s.SegmentIndex,
		Start:        s.Start,
		End:          s.End,
		SearchText:   s.SearchText,
		Entities:     s.Entities,
		Tags:         s.Tags,
		InsertSeq:    s.InsertSeq,
	}
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either is empty, zero, or of mismatched dimension.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
