package chat

import (
	"sync"
	"time"
)

// RevealInterval is the tick period of the pseudo-streaming reveal
const RevealInterval = 30 * time.Millisecond

// minRevealChunk is the smallest number of runes revealed per tick
const minRevealChunk = 10

// Revealer fakes incremental delivery of an already-complete assistant
// reply: the text is revealed in fixed-size chunks on a short interval.
// This is presentation only; no content arrives progressively from the
// server. Stop must be called if the owning view goes away mid-reveal so
// no callback fires after disposal.
type Revealer struct {
	text  []rune
	chunk int
	fn    func(visible string, done bool)

	mu       sync.Mutex
	shown    int
	stopped  bool
	stopOnce sync.Once
	stop     chan struct{}
}

// NewRevealer prepares a reveal of text. fn receives the currently
// visible prefix after every tick, with done=true exactly once at the
// end. Chunk size is a thirtieth of the text, but at least ten runes.
func NewRevealer(text string, fn func(visible string, done bool)) *Revealer {
	runes := []rune(text)
	chunk := len(runes) / 30
	if chunk < minRevealChunk {
		chunk = minRevealChunk
	}
	return &Revealer{
		text:  runes,
		chunk: chunk,
		fn:    fn,
		stop:  make(chan struct{}),
	}
}

// Start begins the reveal ticker. It returns immediately; the ticker
// cancels itself once the full text is visible.
func (r *Revealer) Start() {
	go func() {
		ticker := time.NewTicker(RevealInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				if !r.advance() {
					return
				}
			}
		}
	}()
}

// advance reveals one chunk; returns false when the reveal is finished.
// The callback runs under the lock so Stop cannot return while a
// callback is still in flight; fn must not call back into the Revealer.
func (r *Revealer) advance() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.shown += r.chunk
	if r.shown >= len(r.text) {
		r.shown = len(r.text)
	}
	visible := string(r.text[:r.shown])
	done := r.shown == len(r.text)
	if done {
		r.stopped = true
	}

	r.fn(visible, done)
	return !done
}

// Stop cancels the reveal. No callback fires after Stop returns; safe to
// call more than once, including after natural completion.
func (r *Revealer) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.stopOnce.Do(func() { close(r.stop) })
}
