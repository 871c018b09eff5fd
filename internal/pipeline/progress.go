package pipeline

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressCallback receives progress updates during page processing.
type ProgressCallback interface {
	OnStart(total int)
	OnProgress(current, total int)
	OnComplete()
}

// NoOpProgress implements ProgressCallback and does nothing.
type NoOpProgress struct{}

func (NoOpProgress) OnStart(total int)             {}
func (NoOpProgress) OnProgress(current, total int) {}
func (NoOpProgress) OnComplete()                   {}

// ConsoleProgress prints a single updating progress line.
type ConsoleProgress struct {
	w          io.Writer
	prefix     string
	mu         sync.Mutex
	lastUpdate time.Time
}

// NewConsoleProgress returns a console progress reporter writing to w.
func NewConsoleProgress(w io.Writer, prefix string) *ConsoleProgress {
	return &ConsoleProgress{w: w, prefix: prefix}
}

func (c *ConsoleProgress) OnStart(total int) {
	fmt.Fprintf(c.w, "%s: 0/%d\n", c.prefix, total)
}

func (c *ConsoleProgress) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastUpdate) < 100*time.Millisecond && current != total {
		return
	}
	c.lastUpdate = time.Now()
	fmt.Fprintf(c.w, "\r%s: %d/%d", c.prefix, current, total)
}

func (c *ConsoleProgress) OnComplete() {
	fmt.Fprintln(c.w)
}
