package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

const barWidth = 30

// termProgress draws export progress as a single, continually rewritten
// terminal line. Interrupting the command's context cancels the export.
type termProgress struct {
	ctx context.Context
	out *termenv.Output

	mu     sync.Mutex
	value  int
	note   string
	closed bool
}

func newTermProgress(ctx context.Context, out *termenv.Output) *termProgress {
	return &termProgress{ctx: ctx, out: out}
}

func (p *termProgress) SetProgress(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
	p.draw()
}

func (p *termProgress) SetNote(note string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.note = note
	p.draw()
}

func (p *termProgress) Canceled() bool {
	return p.ctx.Err() != nil
}

func (p *termProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	fmt.Fprintln(p.out)
}

// draw rewrites the line. Callers hold p.mu.
func (p *termProgress) draw() {
	if p.closed {
		return
	}
	v := min(max(p.value, 0), 1000)
	filled := v * barWidth / 1000

	bar := p.out.String(strings.Repeat("█", filled)).Foreground(p.out.Color("2"))
	rest := strings.Repeat("░", barWidth-filled)
	pct := p.out.String(fmt.Sprintf("%3d%%", v/10)).Bold()

	p.out.ClearLine()
	fmt.Fprintf(p.out, "\r%s%s %s %s", bar, rest, pct, p.note)
}
