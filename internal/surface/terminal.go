package surface

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

const prompt = "Enter City name: "

// Terminal is a line driven front end: every line read is submitted as
// a query and every applied state change is written out.
type Terminal struct {
	surface *Surface
	in      io.Reader
	out     io.Writer

	// outMu serializes writes from the reader loop and from completions.
	outMu sync.Mutex
}

func NewTerminal(s *Surface, in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{surface: s, in: in, out: out}
	s.OnChange(func(st State) {
		t.write(Render(st) + "\n")
	})
	return t
}

func (t *Terminal) write(text string) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	_, _ = io.WriteString(t.out, text)
}

// Run reads queries until the input ends or ctx is cancelled. On end of
// input it waits for outstanding lookups so their results are shown;
// on cancellation the view is torn down immediately.
func (t *Terminal) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	t.write(prompt)
	for {
		select {
		case <-ctx.Done():
			t.surface.Close()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				t.surface.Wait()
				t.surface.Close()
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
				default:
				}
				return nil
			}
			t.surface.Submit(line)
			t.write(prompt)
		}
	}
}
