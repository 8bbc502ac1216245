package cli

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// progressReporter prints the running hash count and rate on one
// terminal line until stopped.
type progressReporter struct {
	w        io.Writer
	interval time.Duration
	total    atomic.Uint64
	start    time.Time
	done     chan struct{}
	wg       sync.WaitGroup
}

func newProgressReporter(w io.Writer, interval time.Duration) *progressReporter {
	return &progressReporter{w: w, interval: interval, done: make(chan struct{})}
}

// Add is handed to the miner as its progress callback.
func (p *progressReporter) Add(n uint64) {
	p.total.Add(n)
}

func (p *progressReporter) Total() uint64 {
	return p.total.Load()
}

func (p *progressReporter) Start() {
	p.start = time.Now()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.print()
			case <-p.done:
				return
			}
		}
	}()
}

func (p *progressReporter) Stop() {
	close(p.done)
	p.wg.Wait()
	p.print()
	fmt.Fprintln(p.w)
}

func (p *progressReporter) print() {
	n := p.total.Load()
	rate := 0.0
	if secs := time.Since(p.start).Seconds(); secs > 0 {
		rate = float64(n) / secs
	}
	fmt.Fprintf(p.w, "\rhashes: %d (%.0f H/s)", n, rate)
}
