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

// Package api defines the HTTP surface exposed by serve mode: grounded
// search answers and the indexed video list.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/avelar/news-video-search/internal/core/services"
	"github.com/avelar/news-video-search/internal/store"
)

// Services carries the query-side dependencies the handlers need.
type Services struct {
	Search   *services.SearchService
	Answers  *services.AnswerService
	Segments *store.SegmentStore
	TopK     int
}

// NewRouter builds the gin engine with tracing and CORS middleware and all
// API routes registered under /api/v1.
func NewRouter(svc *Services, serviceName string) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		SearchRouter(apiV1, svc)
		VideoRouter(apiV1, svc)
	}
	return r
}

// SearchRouter registers GET /search?s=<query>&k=<n>, returning the
// synthesized answer with its citations and the raw hits.
func SearchRouter(r *gin.RouterGroup, svc *Services) {
	search := r.Group("/search")
	{
		search.GET("", func(c *gin.Context) {
			query := c.Query("s")
			if len(query) == 0 {
				c.Status(http.StatusBadRequest)
				return
			}
			k, err := strconv.Atoi(c.DefaultQuery("k", strconv.Itoa(svc.TopK)))
			if err != nil || k < 1 {
				k = svc.TopK
			}

			hits, err := svc.Search.FindSegments(c.Request.Context(), query, k)
			if err != nil {
				slog.Error("search failed", "query", query, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}

			answer, err := svc.Answers.Answer(c.Request.Context(), query, hits)
			if err != nil {
				slog.Error("answer synthesis failed", "query", query, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"answer":    answer.Text,
				"citations": answer.Citations,
				"hits":      hits,
			})
		})
	}
}

// VideoRouter registers GET /videos, listing the IDs of indexed videos.
func VideoRouter(r *gin.RouterGroup, svc *Services) {
	videos := r.Group("/videos")
	{
		videos.GET("", func(c *gin.Context) {
			ids, err := svc.Segments.Videos()
			if err != nil {
				slog.Error("video listing failed", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"videos": ids})
		})
	}
}
