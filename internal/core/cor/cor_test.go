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

package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zeebo/assert"

	"github.com/avelar/news-video-search/internal/core/cor"
)

// appendCommand appends its suffix to the string flowing through the chain.
type appendCommand struct {
	cor.BaseCommand
	suffix string
}

func newAppendCommand(name, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)
	context.Add(c.GetOutputParam(), in+c.suffix)
}

// failingCommand records an error without producing output.
type failingCommand struct {
	cor.BaseCommand
}

func (c *failingCommand) Execute(context cor.Context) {
	context.AddError(c.GetName(), errors.New("boom"))
}

func newChainContext(input string) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, input)
	return ctx
}

func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(newAppendCommand("second", "-b"))

	chCtx := newChainContext("start")
	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, "start-a-b", chCtx.Get(cor.CtxIn).(string))
}

func TestChainStopsOnError(t *testing.T) {
	tail := newAppendCommand("tail", "-x")
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("head", "-a"))
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("failer")})
	chain.AddCommand(tail)

	chCtx := newChainContext("start")
	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	// The failing command produced no output, so nothing reached the tail.
	assert.Nil(t, chCtx.Get(cor.CtxIn))
}

func TestChainContinueOnFailure(t *testing.T) {
	chain := cor.NewBaseChain("test-chain").ContinueOnFailure(true)
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("failer")})
	chain.AddCommand(newAppendCommand("tail", "-x"))

	chCtx := newChainContext("start")
	// Seed the tail's input directly since the failer produces none.
	chCtx.Add(cor.CtxOut, "seeded")
	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, "seeded-x", chCtx.Get(cor.CtxIn).(string))
}

func TestChainSkipsNonExecutableCommand(t *testing.T) {
	chain := cor.NewBaseChain("test-chain")
	chain.AddCommand(newAppendCommand("needs-input", "-a"))

	// No CtxIn seeded, so the command's precondition fails; the chain
	// records no error and simply moves on.
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Nil(t, chCtx.Get(cor.CtxIn))
}

func TestContextTempFileCleanup(t *testing.T) {
	chCtx := cor.NewBaseContext()
	chCtx.AddTempFile("/tmp/does-not-exist-12345")
	assert.Equal(t, 1, len(chCtx.GetTempFiles()))
	// Close tolerates files that are already gone.
	chCtx.Close()
}
