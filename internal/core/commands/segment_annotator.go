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

package commands

import (
	goctx "context"
	"log/slog"
	"sync"

	"github.com/avelar/news-video-search/internal/ai"
	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
)

// SegmentAnnotator enriches every bundle with named entities and taxonomy
// tags. Annotation calls are independent per segment, so they fan out to a
// worker pool; each worker owns the bundle it annotates, and degradation
// counts come back on a results channel so the report is only touched from
// this command's goroutine.
type SegmentAnnotator struct {
	cor.BaseCommand
	entities        ai.EntityRecognizer
	tagger          ai.TopicTagger
	taxonomy        []string
	numberOfWorkers int
}

// NewSegmentAnnotator builds the annotator with its worker pool size.
func NewSegmentAnnotator(name string, entities ai.EntityRecognizer, tagger ai.TopicTagger, taxonomy []string, numberOfWorkers int) *SegmentAnnotator {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	out := &SegmentAnnotator{
		BaseCommand:     *cor.NewBaseCommand(name),
		entities:        entities,
		tagger:          tagger,
		taxonomy:        taxonomy,
		numberOfWorkers: numberOfWorkers,
	}
	out.InputParamName = GetBundlesParamName()
	out.OutputParamName = GetBundlesParamName()
	return out
}

// annotationJob hands one bundle to a worker.
type annotationJob struct {
	ctx    goctx.Context
	bundle *model.ModalityBundle
}

// annotationResult reports how many modality failures the job suffered.
type annotationResult struct {
	segmentIndex int
	degraded     int
}

func (c *SegmentAnnotator) Execute(context cor.Context) {
	bundles := context.Get(c.GetInputParam()).([]*model.ModalityBundle)
	report := context.Get(GetReportParamName()).(*model.VideoReport)

	var wg sync.WaitGroup
	jobs := make(chan *annotationJob, len(bundles))
	results := make(chan *annotationResult, len(bundles))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go c.annotationWorker(jobs, results, &wg)
	}

	for _, bundle := range bundles {
		jobs <- &annotationJob{ctx: context.GetContext(), bundle: bundle}
	}
	close(jobs)

	wg.Wait()
	close(results)

	for r := range results {
		if r.degraded > 0 {
			report.DegradedModalities += r.degraded
			c.GetErrorCounter().Add(context.GetContext(), 1)
		}
	}

	context.Add(c.GetOutputParam(), bundles)
	context.Add(cor.CtxOut, bundles)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
}

// annotationWorker annotates bundles until the jobs channel drains. A
// bundle with no text at all is skipped; there is nothing to annotate.
func (c *SegmentAnnotator) annotationWorker(jobs <-chan *annotationJob, results chan<- *annotationResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		text := FuseText(j.bundle)
		if text == "" {
			results <- &annotationResult{segmentIndex: j.bundle.Segment.Index}
			continue
		}

		degraded := 0
		entities, err := c.entities.Entities(j.ctx, text)
		if err != nil {
			slog.WarnContext(j.ctx, "entity extraction failed; entities degraded",
				"segment", j.bundle.Segment.Index, "error", err)
			degraded++
		} else {
			j.bundle.Entities = entities
		}

		tags, err := c.tagger.Tags(j.ctx, text, c.taxonomy)
		if err != nil {
			slog.WarnContext(j.ctx, "tagging failed; tags degraded",
				"segment", j.bundle.Segment.Index, "error", err)
			degraded++
		} else {
			j.bundle.Tags = tags
		}

		results <- &annotationResult{segmentIndex: j.bundle.Segment.Index, degraded: degraded}
	}
}
