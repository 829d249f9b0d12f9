package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// progress shows a spinner on a terminal and plain lines elsewhere.
type progress struct {
	s *spinner.Spinner
	w io.Writer
}

func (a *app) startProgress(msg string) *progress {
	p := &progress{w: a.stderr}
	if f, ok := a.stderr.(*os.File); ok && a.output == formatHuman {
		p.s = spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(f))
		p.s.Suffix = " " + msg
		p.s.Start()
		return p
	}
	fmt.Fprintf(p.w, "... %s\n", msg)
	return p
}

func (p *progress) update(msg string) {
	if p.s != nil {
		p.s.Lock()
		p.s.Suffix = " " + msg
		p.s.Unlock()
		return
	}
	fmt.Fprintf(p.w, "... %s\n", msg)
}

func (p *progress) stop() {
	if p.s != nil {
		p.s.Stop()
	}
}
