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

package workflow

import (
	goctx "context"
	"fmt"
	"strings"
	"sync"

	"github.com/avelar/news-video-search/internal/core/commands"
	"github.com/avelar/news-video-search/internal/core/cor"
	"github.com/avelar/news-video-search/internal/core/model"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const runnerName = "github.com/avelar/news-video-search/workflow/runner"

var (
	runnerTracer = otel.Tracer(runnerName)
	runnerLogger = otelslog.NewLogger(runnerName)
)

// IngestRunner executes the ingest pipeline across a set of videos with a
// bounded worker pool. One video is one chain execution over its own
// context; a failing video never stops the others.
type IngestRunner struct {
	pipeline cor.Chain
	workers  int
}

// NewIngestRunner builds a runner over an assembled pipeline.
func NewIngestRunner(pipeline cor.Chain, workers int) *IngestRunner {
	if workers < 1 {
		workers = 1
	}
	return &IngestRunner{pipeline: pipeline, workers: workers}
}

// Run ingests every video and returns the aggregated report. Cancelling
// the context stops new videos from starting; in-flight videos stop at
// their next segment boundary.
func (r *IngestRunner) Run(ctx goctx.Context, videos []*model.VideoSource) *model.IngestReport {
	runCtx, span := runnerTracer.Start(ctx, "ingest_run")
	defer span.End()

	var wg sync.WaitGroup
	jobs := make(chan *model.VideoSource, len(videos))
	results := make(chan *model.VideoReport, len(videos))

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go r.ingestWorker(runCtx, jobs, results, &wg)
	}

	for _, video := range videos {
		jobs <- video
	}
	close(jobs)

	wg.Wait()
	close(results)

	report := &model.IngestReport{}
	for vr := range results {
		runnerLogger.InfoContext(runCtx, "video ingested", "summary", vr.String())
		report.Add(vr)
	}
	return report
}

// ingestWorker runs whole videos off the jobs channel.
func (r *IngestRunner) ingestWorker(ctx goctx.Context, jobs <-chan *model.VideoSource, results chan<- *model.VideoReport, wg *sync.WaitGroup) {
	defer wg.Done()

	for video := range jobs {
		vr := &model.VideoReport{VideoID: video.ID, FileName: video.FileName}

		if err := ctx.Err(); err != nil {
			vr.MarkFailed(fmt.Sprintf("run cancelled: %v", err))
			results <- vr
			continue
		}

		chCtx := cor.NewBaseContext()
		chCtx.SetContext(ctx)
		chCtx.Add(cor.CtxIn, video)
		chCtx.Add(commands.GetReportParamName(), vr)

		r.pipeline.Execute(chCtx)

		if chCtx.HasErrors() && !vr.Failed {
			msgs := make([]string, 0, len(chCtx.GetErrors()))
			for name, err := range chCtx.GetErrors() {
				msgs = append(msgs, fmt.Sprintf("%s: %v", name, err))
			}
			vr.MarkFailed(strings.Join(msgs, "; "))
		}

		chCtx.Close()
		results <- vr
	}
}
