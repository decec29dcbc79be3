package tui

import (
	"context"

	"github.com/petrijr/sessionflow/pkg/api"
)

// watch turns store notifications into a coalescing signal. The subscriber
// never blocks the store: a pending signal absorbs later ones and the
// reader fetches the latest snapshot itself.
func watch(st api.Store) (<-chan struct{}, api.Subscription) {
	ch := make(chan struct{}, 1)
	sub := st.Subscribe(func(api.Snapshot) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch, sub
}

// PathPrompt connects a qrscan.FileScanner to the TUI: the scanner blocks
// in Ask until the user types a path into the QR prompt.
type PathPrompt struct {
	answers chan string
}

// NewPathPrompt returns an idle prompt.
func NewPathPrompt() *PathPrompt {
	return &PathPrompt{answers: make(chan string, 1)}
}

// Ask waits for the next answer. It satisfies qrscan.PathFunc.
func (p *PathPrompt) Ask(ctx context.Context) (string, error) {
	select {
	case path := <-p.answers:
		return path, nil
	case <-ctx.Done():
		return "", api.NewCancelledError(ctx.Err())
	}
}

// Answer hands path to a waiting Ask. An empty path cancels the scan.
// Answers nobody is waiting for are dropped.
func (p *PathPrompt) Answer(path string) {
	select {
	case p.answers <- path:
	default:
	}
}
