// Package docgentest holds fakes shared by the docgen tests.
package docgentest

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/vorhaben-backend/internal/platform/openai"
)

// Reply is one scripted completion result.
type Reply struct {
	Text string
	Err  error
}

// LLM is a scripted openai.Client. Replies are consumed in order; once exhausted,
// Handler (when set) answers, otherwise Complete fails.
type LLM struct {
	mu      sync.Mutex
	replies []Reply
	calls   []openai.Request

	Handler func(req openai.Request) (string, error)
}

func NewLLM(replies ...Reply) *LLM {
	return &LLM{replies: replies}
}

// Texts scripts successful replies.
func Texts(texts ...string) []Reply {
	out := make([]Reply, 0, len(texts))
	for _, t := range texts {
		out = append(out, Reply{Text: t})
	}
	return out
}

func (l *LLM) Complete(ctx context.Context, req openai.Request) (openai.Response, error) {
	if err := ctx.Err(); err != nil {
		return openai.Response{}, err
	}
	l.mu.Lock()
	l.calls = append(l.calls, req)
	var (
		next Reply
		ok   bool
	)
	if len(l.replies) > 0 {
		next, ok = l.replies[0], true
		l.replies = l.replies[1:]
	}
	handler := l.Handler
	l.mu.Unlock()

	if !ok {
		if handler == nil {
			return openai.Response{}, fmt.Errorf("docgentest: no scripted reply")
		}
		text, err := handler(req)
		if err != nil {
			return openai.Response{}, err
		}
		return openai.Response{Text: text, Model: "fake"}, nil
	}
	if next.Err != nil {
		return openai.Response{}, next.Err
	}
	return openai.Response{Text: next.Text, Model: "fake"}, nil
}

// Calls returns a copy of every request seen so far.
func (l *LLM) Calls() []openai.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]openai.Request(nil), l.calls...)
}

func (l *LLM) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}
