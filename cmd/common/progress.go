package common

import (
	"fmt"
	"io"

	"fjacquet/mpr-recon/internal/pipeline"

	"github.com/schollz/progressbar/v3"
)

// StageProgress renders a progress bar that advances once per pipeline stage.
type StageProgress struct {
	bar  *progressbar.ProgressBar
	seen map[string]bool
}

// NewStageProgress creates a bar over pipeline.Stages writing to w.
func NewStageProgress(w io.Writer) *StageProgress {
	bar := progressbar.NewOptions(len(pipeline.Stages),
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Reconciling...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return &StageProgress{bar: bar, seen: make(map[string]bool, len(pipeline.Stages))}
}

// Stage advances the bar for a stage the first time it is reported.
func (p *StageProgress) Stage(name string) {
	if p.seen[name] {
		return
	}
	p.seen[name] = true
	p.bar.Describe(fmt.Sprintf("[cyan][bold]%s[reset]", name))
	_ = p.bar.Add(1)
}

// Done reports how many distinct stages have run.
func (p *StageProgress) Done() int {
	return len(p.seen)
}

// Finish completes the bar even when the run stopped early.
func (p *StageProgress) Finish() {
	_ = p.bar.Finish()
}
