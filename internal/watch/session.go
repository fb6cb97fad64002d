package watch

import (
	"os"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
	"github.com/glimmerdesk/fsbridge/internal/shared/id"
)

// State is the session lifecycle phase.
type State string

const (
	StateStarting State = "starting"
	StateActive   State = "active"
	StateStopped  State = "stopped"
)

// subscription setup retries transient OS registration failures a bounded
// number of times; every other filesystem operation in this core never
// retries.
const (
	addRetries = 3
	addBackoff = 10 * time.Millisecond
)

// Session is one active watch request: a set of roots multiplexed through
// one fsnotify watcher into a single outbound batch channel.
type Session struct {
	ID        id.WatchID
	Roots     []string
	Recursive bool
	Debounce  time.Duration

	fsw    *fsnotify.Watcher
	out    chan Batch
	stopCh chan struct{}
	stop   sync.Once
	logger *zap.Logger

	mu    sync.RWMutex
	state State
}

// newSession builds the session and performs all OS subscriptions.
// All-or-nothing: any root failing to subscribe tears down every
// subscription already made and no session exists afterwards.
func newSession(sid id.WatchID, roots []string, recursive bool, debounce time.Duration, logger *zap.Logger) (*Session, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fserr.Wrap("watch", err)
	}

	s := &Session{
		ID:        sid,
		Roots:     roots,
		Recursive: recursive,
		Debounce:  debounce,
		fsw:       fsw,
		out:       make(chan Batch, 16),
		stopCh:    make(chan struct{}),
		logger:    logger,
		state:     StateStarting,
	}

	for _, root := range roots {
		if err := s.subscribe(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	s.setState(StateActive)
	go s.run()
	return s, nil
}

// Events is the session's outbound channel. Closed when the session stops;
// nothing is ever sent after Stop returns.
func (s *Session) Events() <-chan Batch {
	return s.out
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Stop tears the session down. Idempotent; effective immediately from the
// caller's perspective: buffered-but-unflushed events are discarded, and
// the run goroutine closes the outbound channel rather than emitting.
func (s *Session) Stop() {
	s.stop.Do(func() {
		s.setState(StateStopped)
		close(s.stopCh)
	})
}

// subscribe registers one root, walking the tree when recursive.
func (s *Session) subscribe(root string) error {
	if err := s.addWithRetry(root); err != nil {
		return err
	}
	if !s.Recursive {
		return nil
	}

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || p == root {
			return nil
		}
		return s.addWithRetry(p)
	})
	if walkErr != nil {
		return walkErr
	}
	return nil
}

// addWithRetry registers one path with the OS notifier, retrying transient
// registration failures a bounded number of times before surfacing IOError.
func (s *Session) addWithRetry(path string) error {
	var err error
	for attempt := 0; attempt < addRetries; attempt++ {
		if err = s.fsw.Add(path); err == nil {
			return nil
		}
		time.Sleep(addBackoff)
	}
	return fserr.Wrap("watch", err)
}

// run owns the debounce buffer and timer. It is the only goroutine that
// touches either and the only sender on the outbound channel, so buffer
// mutation and flush serialize without locks.
func (s *Session) run() {
	defer func() {
		s.fsw.Close()
		close(s.out)
	}()

	buf := newBuffer()
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-s.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			s.maybeTrackSubdir(ev)

			attribOnly := ev.Op == fsnotify.Chmod
			kind := kindOf(ev.Op)
			if kind == KindOther && !attribOnly {
				continue
			}

			if s.Debounce <= 0 {
				// Immediate mode: each raw event is its own batch.
				single := newBuffer()
				single.add(ev.Name, kind, attribOnly)
				s.emit(single.flush())
				continue
			}

			buf.add(ev.Name, kind, attribOnly)
			if timer == nil {
				timer = time.NewTimer(s.Debounce)
				timerC = timer.C
			}

		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch notifier error",
				zap.String("session", s.ID.String()),
				zap.Error(err),
			)

		case <-timerC:
			timer = nil
			timerC = nil
			s.emit(buf.flush())
		}
	}
}

// emit delivers one batch unless the session is stopping. The stop check
// runs first on its own: a two-case select would pick randomly when the
// outbound buffer has room and stopCh is already closed, leaking a batch
// past Stop.
func (s *Session) emit(batch Batch) {
	if len(batch) == 0 {
		return
	}
	select {
	case <-s.stopCh:
		return
	default:
	}
	select {
	case <-s.stopCh:
	case s.out <- batch:
	}
}

// maybeTrackSubdir auto-subscribes directories created under a recursive
// root so nested changes are observed without re-issuing the watch.
func (s *Session) maybeTrackSubdir(ev fsnotify.Event) {
	if !s.Recursive || !ev.Op.Has(fsnotify.Create) {
		return
	}
	fi, err := os.Lstat(ev.Name)
	if err != nil || !fi.IsDir() {
		return
	}
	if err := s.addWithRetry(ev.Name); err != nil {
		s.logger.Warn("failed to track new subdirectory",
			zap.String("session", s.ID.String()),
			zap.String("path", ev.Name),
			zap.Error(err),
		)
		return
	}
	// Contents may have appeared before the subscription landed.
	conf := fastwalk.Config{Follow: false}
	fastwalk.Walk(&conf, ev.Name, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() || p == ev.Name {
			return nil
		}
		return s.addWithRetry(p)
	})
}
