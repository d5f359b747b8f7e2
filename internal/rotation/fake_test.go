package rotation

import (
	"context"
	"errors"
	"sync"

	"github.com/tbourn/go-issue-digest/internal/llm"
)

var errFake = errors.New("fake provider failure")

// fakeClient records calls and answers from a fixed script.
type fakeClient struct {
	label string
	text  string
	err   error

	mu    sync.Mutex
	calls int
}

func (f *fakeClient) Label() string { return f.label }

func (f *fakeClient) Complete(ctx context.Context, _ llm.Request) (llm.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return llm.Result{}, err
	}
	if f.err != nil {
		return llm.Result{}, f.err
	}
	return llm.Result{Text: f.text, Provider: f.label}, nil
}

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
