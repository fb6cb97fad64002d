package watch

import (
	"testing"

	"go.uber.org/zap"

	"github.com/glimmerdesk/fsbridge/internal/shared/id"
)

// A stopped session must not deliver, even though the outbound buffer has
// room. Repeated because a two-way select would only leak sometimes.
func TestEmitAfterStopDeliversNothing(t *testing.T) {
	s := &Session{
		ID:     id.WatchID("watch_stopped"),
		out:    make(chan Batch, 16),
		stopCh: make(chan struct{}),
		logger: zap.NewNop(),
		state:  StateActive,
	}
	s.Stop()

	batch := Batch{{Path: "/late", Kind: KindCreate}}
	for i := 0; i < 200; i++ {
		s.emit(batch)
	}

	if n := len(s.out); n != 0 {
		t.Errorf("%d batches buffered after Stop, want 0", n)
	}
}
