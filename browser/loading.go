package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is the loading indicator of a window. On a terminal it animates,
// otherwise it logs when loading starts and stops.
type Spinner struct {
	out   io.Writer
	tty   bool
	label string
	log   *slog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started time.Time
}

func NewSpinner(out *os.File, label string) *Spinner {
	return newSpinner(out, term.IsTerminal(int(out.Fd())), label)
}

func newSpinner(out io.Writer, tty bool, label string) *Spinner {
	return &Spinner{
		out:   out,
		tty:   tty,
		label: label,
		log:   slog.Default(),
	}
}

func (s *Spinner) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stop != nil
}

func (s *Spinner) Show(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.started = time.Now()

	if !s.tty {
		s.log.Info("loading", "what", s.label)
		close(s.done)

		return nil
	}

	go s.spin(s.stop, s.done)

	return nil
}

func (s *Spinner) Hide(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return nil
	}

	close(s.stop)
	<-s.done

	s.stop, s.done = nil, nil

	if !s.tty {
		s.log.Info("loading done", "what", s.label, "elapsed", time.Since(s.started).Round(time.Millisecond))
		return nil
	}

	_, err := fmt.Fprint(s.out, "\r\033[K")

	return err
}

func (s *Spinner) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.out, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.label)

		select {
		case <-stop:
			return
		case <-t.C:
		}
	}
}
