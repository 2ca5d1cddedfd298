package engine

import (
	"context"
	"sync"
	"time"
)

const probeTimeout = 5 * time.Second

// probeArgs maps each external tool to the argument used to check that
// it is installed and runnable. The ffmpeg family uses a single dash.
var probeArgs = map[string][]string{
	"pngquant":  {"--version"},
	"jpegoptim": {"--version"},
	"gifsicle":  {"--version"},
	"gifski":    {"--version"},
	"vips":      {"--version"},
	"ffmpeg":    {"-version"},
	"ffprobe":   {"-version"},
}

// ToolCache memoizes availability probes for external binaries so that
// repeated batch runs do not spawn a process per file. Entries can be
// invalidated when the environment changes (a tool gets installed or a
// configured path is updated).
type ToolCache struct {
	runner Runner

	mu    sync.Mutex
	known map[string]bool
}

func NewToolCache(runner Runner) *ToolCache {
	return &ToolCache{
		runner: runner,
		known:  make(map[string]bool),
	}
}

// Available reports whether the named tool responds to its version probe.
// The first call per tool runs the probe; later calls return the cached
// answer until Invalidate is called.
func (c *ToolCache) Available(name string) bool {
	c.mu.Lock()
	if ok, cached := c.known[name]; cached {
		c.mu.Unlock()
		return ok
	}
	c.mu.Unlock()

	ok := c.probe(name)

	c.mu.Lock()
	c.known[name] = ok
	c.mu.Unlock()
	return ok
}

// Invalidate drops the cached answer for a single tool.
func (c *ToolCache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.known, name)
	c.mu.Unlock()
}

// InvalidateAll drops every cached probe result.
func (c *ToolCache) InvalidateAll() {
	c.mu.Lock()
	c.known = make(map[string]bool)
	c.mu.Unlock()
}

func (c *ToolCache) probe(name string) bool {
	args, ok := probeArgs[name]
	if !ok {
		args = []string{"--version"}
	}
	res := c.runner.Run(context.Background(), probeTimeout, name, args...)
	return res.Success
}
