package assistant

import (
	"context"
	"time"
)

// Typist holds a reply back for a short, slightly random pause so answers
// read like they are being typed. The zero value does not wait.
type Typist struct {
	Base   time.Duration
	Jitter time.Duration
	src    Source
}

// NewTypist returns a Typist waiting base plus a uniform jitter in [0, jitter).
func NewTypist(base, jitter time.Duration, src Source) Typist {
	if src == nil {
		src = globalSource{}
	}
	return Typist{Base: base, Jitter: jitter, src: src}
}

// Delay returns the next pause length.
func (t Typist) Delay() time.Duration {
	d := t.Base
	if t.Jitter >= time.Millisecond && t.src != nil {
		d += time.Duration(t.src.IntN(int(t.Jitter/time.Millisecond))) * time.Millisecond
	}
	if d < 0 {
		return 0
	}
	return d
}

// Wait blocks for Delay or until ctx is done.
func (t Typist) Wait(ctx context.Context) error {
	d := t.Delay()
	if d == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
