package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"tvshelf/internal/batch"
)

// relocationProgress renders a batch on the terminal. It is both the
// per-file relocate.ProgressSink shared by all workers and the batch
// observer. Without a terminal only the final summary is printed.
type relocationProgress struct {
	out         io.Writer
	interactive bool

	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	status string
}

func newRelocationProgress(out io.Writer, interactive bool) *relocationProgress {
	return &relocationProgress{out: out, interactive: interactive}
}

func (p *relocationProgress) OnProgress(written, total int64) {
	if !p.interactive {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil && total > 0 {
		p.bar.Describe(fmt.Sprintf("%s %s/%s", p.status, humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total))))
	}
}

func (p *relocationProgress) OnStatus(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

func (p *relocationProgress) OnComplete(bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = ""
}

func (p *relocationProgress) Update(total, remaining int) {
	if !p.interactive || total == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("relocating"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(total - remaining)
}

func (p *relocationProgress) Done(summary batch.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
	fmt.Fprintf(p.out, "Relocated %d of %d files in %s (%d source not removed, %d failed, %d abandoned)\n",
		summary.Succeeded, summary.Total, summary.Elapsed.Round(time.Millisecond), summary.Partial, summary.Failed, summary.Abandoned)
}
