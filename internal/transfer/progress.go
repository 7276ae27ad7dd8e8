package transfer

import (
	"context"
	"io"
)

// progressWriter is the per-chunk checkpoint: every Write first checks for
// cancellation, then forwards the chunk and reports the new percentage when
// it has grown.
type progressWriter struct {
	ctx   context.Context
	w     io.Writer
	side  Side
	path  string
	total int64
	sent  int64
	last  int

	report  func(percent int)
	counted func(n int)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	if p.ctx.Err() != nil {
		return 0, ErrCancelled
	}

	n, err := p.w.Write(b)
	p.sent += int64(n)
	if p.counted != nil {
		p.counted(n)
	}
	if err != nil {
		return n, &IOError{Side: p.side, Op: "write", Path: p.path, Err: err}
	}

	if p.total > 0 {
		if pct := percent(p.sent, p.total); pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, nil
}

// sourceReader tags read failures with the side they came from. Wrapping the
// source also hides WriterTo, so io.CopyBuffer always goes through the
// caller's buffer and every chunk passes the checkpoint.
type sourceReader struct {
	r    io.Reader
	side Side
	path string
}

func (s *sourceReader) Read(b []byte) (int, error) {
	n, err := s.r.Read(b)
	if err != nil && err != io.EOF {
		return n, &IOError{Side: s.side, Op: "read", Path: s.path, Err: err}
	}
	return n, err
}

// percent is floor(sent*100/total) clamped to [0, 100].
func percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := sent * 100 / total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}
