// Package confirm provides the human approval gate that precedes every
// side-effecting action.
package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Channel is the operator approval capability. Ask blocks until the operator
// answers or ctx ends, and returns true only on an explicit affirmative;
// anything else, including EOF and expiry, declines. The channel is a single
// shared resource: one Ask at a time.
type Channel interface {
	Ask(ctx context.Context, prompt string) (bool, error)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	choiceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type readResult struct {
	line string
	err  error
}

// Console asks for approval on an interactive terminal. A single long-lived
// goroutine owns the input stream and feeds lines to Ask, so an expired or
// cancelled prompt never leaves a stale reader consuming the operator's
// answer to the next one.
type Console struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	reads chan readResult
}

// NewConsole creates a console channel. Nil in/out default to stdin/stdout
// so tests can inject buffers.
func NewConsole(in io.Reader, out io.Writer) *Console {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Console{in: in, out: out}
}

func (c *Console) startReader() {
	c.once.Do(func() {
		c.reads = make(chan readResult)
		go func() {
			defer close(c.reads)
			scanner := bufio.NewScanner(c.in)
			for scanner.Scan() {
				c.reads <- readResult{line: scanner.Text()}
			}
			if err := scanner.Err(); err != nil {
				c.reads <- readResult{err: err}
			}
		}()
	})
}

// Ask prints the prompt and waits for one line or for ctx to end. Only "y"
// or "yes" (case-insensitive) approve.
func (c *Console) Ask(ctx context.Context, prompt string) (bool, error) {
	c.startReader()

	fmt.Fprintf(c.out, "\n%s\n\n", headerStyle.Render("⚠ approval required"))
	fmt.Fprintln(c.out, prompt)
	fmt.Fprintf(c.out, "\n%s ", choiceStyle.Render("Approve? [y/N]"))

	select {
	case res, ok := <-c.reads:
		if !ok {
			// EOF declines: no answer is not approval.
			return false, nil
		}
		if res.err != nil {
			return false, res.err
		}
		switch strings.ToLower(strings.TrimSpace(res.line)) {
		case "y", "yes":
			fmt.Fprintln(c.out, "✓ approved")
			return true, nil
		default:
			fmt.Fprintln(c.out, "✗ declined")
			return false, nil
		}
	case <-ctx.Done():
		fmt.Fprintln(c.out, "✗ no answer, declined")
		return false, nil
	}
}

// WithTimeout wraps ch so that an unanswered prompt resolves to declined
// after d. This is the extension point for unattended operation; d <= 0
// returns ch unchanged. The deadline travels through the context, so the
// wrapped channel stops waiting instead of leaking a reader.
func WithTimeout(ch Channel, d time.Duration) Channel {
	if d <= 0 {
		return ch
	}
	return &timeoutChannel{ch: ch, d: d}
}

type timeoutChannel struct {
	ch Channel
	d  time.Duration
}

func (t *timeoutChannel) Ask(ctx context.Context, prompt string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.ch.Ask(ctx, prompt)
}
