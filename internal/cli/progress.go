package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
)

// progressReporter draws job events as a terminal progress bar. Percent is
// the job-level percentage, so the bar always runs to 100.
type progressReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer, description string) *progressReporter {
	return &progressReporter{
		out: out,
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(out, "\n")
			}),
		),
	}
}

// handle is the emit callback of transfer.Engine.Run.
func (p *progressReporter) handle(ev transfer.Event) {
	switch ev.Type {
	case transfer.EventProgress:
		_ = p.bar.Set(ev.Percent)
	case transfer.EventStatus:
		p.bar.Describe(ev.Status)
	case transfer.EventFinished:
		if ev.Result != nil && ev.Result.OK {
			_ = p.bar.Finish()
			return
		}
		_ = p.bar.Clear()
	}
}
