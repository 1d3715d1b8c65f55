// Package executortest provides a scripted executor.Runner for tests.
package executortest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"svcman/internal/pkg/executor"
)

// Response is the scripted result for one command line.
type Response struct {
	Stdout string
	Err    error
}

// Fake records every command it is asked to run and answers from Responses,
// keyed by Command.String(). Unknown commands return empty output.
type Fake struct {
	mu        sync.Mutex
	Responses map[string]Response
	Calls     []executor.Command
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{Responses: map[string]Response{}}
}

// On scripts the response for cmd.
func (f *Fake) On(cmd executor.Command, stdout string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[cmd.String()] = Response{Stdout: stdout, Err: err}
	return f
}

func (f *Fake) Output(_ context.Context, cmd executor.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmd)
	r := f.Responses[cmd.String()]
	return r.Stdout, r.Err
}

func (f *Fake) Stream(_ context.Context, w io.Writer, cmd executor.Command) error {
	f.mu.Lock()
	r := f.Responses[cmd.String()]
	f.Calls = append(f.Calls, cmd)
	f.mu.Unlock()
	if _, err := io.WriteString(w, r.Stdout); err != nil {
		return err
	}
	return r.Err
}

// Count returns how many times cmd was run.
func (f *Fake) Count(cmd executor.Command) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.String() == cmd.String() {
			n++
		}
	}
	return n
}

// Commands returns the recorded command lines in order.
func (f *Fake) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

func (f *Fake) String() string {
	return fmt.Sprintf("executortest.Fake%v", f.Commands())
}
