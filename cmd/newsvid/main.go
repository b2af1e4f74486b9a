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

// Package main is the newsvid command line: ingest a video library into
// the segment index, search it with natural-language questions, refresh
// the tag taxonomy, or run the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelar/news-video-search/internal/core/model"
	"github.com/avelar/news-video-search/internal/core/workflow"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsvid",
		Short:         "Index news videos and answer questions about them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIngestCommand())
	root.AddCommand(newSearchCommand())
	root.AddCommand(newTagGenerateCommand())
	root.AddCommand(newServeCommand())
	return root
}

func newIngestCommand() *cobra.Command {
	var (
		videoDir    string
		window      float64
		stride      float64
		maxSegments int
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Scan the video directory and index every playable video",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Flags override the TOML values; validation runs after.
			if videoDir != "" {
				cfg.Application.VideoDir = videoDir
			}
			if cmd.Flags().Changed("window") {
				cfg.Segmenter.WindowSeconds = window
			}
			if cmd.Flags().Changed("stride") {
				cfg.Segmenter.StrideSeconds = stride
			}
			if cmd.Flags().Changed("max-segments") {
				cfg.Segmenter.MaxSegments = maxSegments
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			state, err := InitState(ctx, cfg)
			if err != nil {
				return err
			}
			defer state.Close(ctx)

			report, err := state.RunIngest(ctx)
			if err != nil {
				return err
			}
			printReport(report)
			if failed := report.FailedCount(); failed > 0 {
				return fmt.Errorf("%d of %d videos failed", failed, len(report.Videos))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&videoDir, "video-dir", "", "directory of videos to ingest (overrides config)")
	cmd.Flags().Float64Var(&window, "window", 0, "window size in seconds (overrides config)")
	cmd.Flags().Float64Var(&stride, "stride", 0, "stride in seconds (overrides config)")
	cmd.Flags().IntVar(&maxSegments, "max-segments", 0, "cap on segments per video, 0 for unlimited (overrides config)")
	return cmd
}

func newSearchCommand() *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Answer a question from the indexed segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("k") {
				cfg.Search.TopK = k
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			state, err := InitState(ctx, cfg)
			if err != nil {
				return err
			}
			defer state.Close(ctx)

			hits, err := state.Search.FindSegments(ctx, args[0], cfg.Search.TopK)
			if err != nil {
				return err
			}
			answer, err := state.Answers.Answer(ctx, args[0], hits)
			if err != nil {
				return err
			}

			fmt.Println(answer.Text)
			for _, c := range answer.Citations {
				fmt.Printf("  [%s %.1fs-%.1fs]\n", c.VideoID, c.Start, c.End)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "number of segments to retrieve (overrides config)")
	return cmd
}

func newTagGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tag-generate",
		Short: "Sample the index and persist the observed tag taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			state, err := InitState(ctx, cfg)
			if err != nil {
				return err
			}
			defer state.Close(ctx)

			gen := workflow.NewTaxonomyGenerator(state.Segments, state.Clients.TopicTagger, state.Taxonomy)
			labels, err := gen.Run(ctx)
			if err != nil {
				return err
			}
			if err := workflow.WriteTagsFile(cfg.Storage.TagsFile, labels); err != nil {
				return err
			}
			fmt.Printf("wrote %d labels to %s\n", len(labels), cfg.Storage.TagsFile)
			return nil
		},
	}
}

func printReport(report *model.IngestReport) {
	for _, v := range report.Videos {
		fmt.Println(v.String())
	}
	fmt.Printf("total: %d segments indexed across %d videos\n",
		report.IndexedSegments(), len(report.Videos))
}
