package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"diyclient/internal/ui"
)

// Terminal is the line-oriented front end. Navigation and alerts are printed;
// confirmations are answered with y/N on the input.
type Terminal struct {
	out io.Writer
	in  *bufio.Reader

	mu        sync.Mutex
	assumeYes bool
	last      *ui.Route
}

// NewTerminal creates a Terminal reading answers from in and writing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{out: out, in: bufio.NewReader(in)}
}

// SetAssumeYes makes every confirmation succeed without reading input.
func (t *Terminal) SetAssumeYes(yes bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assumeYes = yes
}

func (t *Terminal) Navigate(to ui.Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = &to
	fmt.Fprintf(t.out, "-> %s\n", to)
}

func (t *Terminal) Alert(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, message)
}

func (t *Terminal) Confirm(question string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.assumeYes {
		fmt.Fprintf(t.out, "%s [y/N]: y\n", question)
		return true
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", question)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(t.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// LastRoute returns the most recent navigation.
func (t *Terminal) LastRoute() (ui.Route, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return ui.Route{}, false
	}
	return *t.last, true
}
