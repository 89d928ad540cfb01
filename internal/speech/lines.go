package speech

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// LineRecognizer treats every line read from r as a final transcript. It
// stands in for a microphone on terminals.
type LineRecognizer struct {
	r     io.Reader
	once  sync.Once
	lines chan string
	err   error
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{r: r, lines: make(chan string)}
}

func (l *LineRecognizer) start() {
	go func() {
		sc := bufio.NewScanner(l.r)
		for sc.Scan() {
			l.lines <- sc.Text()
		}
		l.err = sc.Err()
		close(l.lines)
	}()
}

// Recognize forwards lines until EOF (nil) or cancellation (ctx.Err()).
// Successive calls continue from where the previous one stopped.
func (l *LineRecognizer) Recognize(ctx context.Context, results chan<- Result) error {
	l.once.Do(l.start)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-l.lines:
			if !ok {
				return l.err
			}
			select {
			case results <- Result{Transcript: line, Final: true}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
