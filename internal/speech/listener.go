package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultListenTimeout = 15 * time.Second

var ErrAlreadyListening = errors.New("already listening")

type State int

const (
	Idle State = iota
	Listening
	Processing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Processing:
		return "processing"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Listener turns recognizer events into commands.
//
// Transitions: Idle/Stopped -> Listening on Listen; Listening -> Processing
// on a final transcript and back once the handler returns; any -> Stopped on
// timeout, Stop, or recognizer error. A recognition session that ends on its
// own is restarted only when it produced at least one result.
type Listener struct {
	rec      Recognizer
	timeout  time.Duration
	handle   func(ctx context.Context, transcript string)
	onChange func(State)
	log      logrus.FieldLogger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// NewListener builds a listener; rec may be nil on platforms without speech
// recognition, in which case Listen returns ErrUnsupported.
func NewListener(rec Recognizer, timeout time.Duration, handle func(ctx context.Context, transcript string), log logrus.FieldLogger) *Listener {
	if timeout <= 0 {
		timeout = DefaultListenTimeout
	}
	return &Listener{
		rec:     rec,
		timeout: timeout,
		handle:  handle,
		log:     log.WithField("component", "listener"),
	}
}

// OnStateChange registers fn to observe every transition. fn runs with the
// listener locked and must not call back into it.
func (l *Listener) OnStateChange(fn func(State)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listener) setState(s State) {
	l.mu.Lock()
	l.setStateLocked(s)
	l.mu.Unlock()
}

func (l *Listener) setStateLocked(s State) {
	if l.state == s {
		return
	}
	l.state = s
	if l.onChange != nil {
		l.onChange(s)
	}
}

// Stop ends a running Listen. It is a no-op when not listening.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
}

// Listen captures speech until the timeout, Stop, or a recognizer error, and
// blocks until then. Timeout and Stop are not errors.
func (l *Listener) Listen(ctx context.Context) error {
	if l.rec == nil {
		return ErrUnsupported
	}

	l.mu.Lock()
	if l.state == Listening || l.state == Processing {
		l.mu.Unlock()
		return ErrAlreadyListening
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	l.cancel = cancel
	l.setStateLocked(Listening)
	l.mu.Unlock()

	defer func() {
		cancel()
		l.mu.Lock()
		l.cancel = nil
		l.setStateLocked(Stopped)
		l.mu.Unlock()
	}()

	for {
		heard, err := l.session(ctx)
		if ctx.Err() != nil {
			l.log.WithField("reason", ctx.Err()).Info("stopped listening")
			return nil
		}
		if err != nil {
			return fmt.Errorf("recognition: %w", err)
		}
		if !heard {
			l.log.Debug("recognition ended without input")
			return nil
		}
		l.log.Debug("recognition ended, restarting")
	}
}

func (l *Listener) session(ctx context.Context) (bool, error) {
	results := make(chan Result)
	done := make(chan error, 1)
	go func() { done <- l.rec.Recognize(ctx, results) }()

	// handlers finish their remote calls even if listening times out meanwhile
	handleCtx := context.WithoutCancel(ctx)
	heard := false
	for {
		select {
		case r := <-results:
			heard = true
			if !r.Final {
				l.log.WithField("partial", r.Transcript).Debug("interim transcript")
				continue
			}
			text := strings.TrimSpace(r.Transcript)
			if text == "" {
				continue
			}
			l.setState(Processing)
			l.handle(handleCtx, text)
			l.setState(Listening)
		case err := <-done:
			return heard, err
		}
	}
}
