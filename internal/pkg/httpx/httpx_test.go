package httpx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type codeErr int

func (c codeErr) Error() string       { return fmt.Sprintf("status %d", int(c)) }
func (c codeErr) HTTPStatusCode() int { return int(c) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("wrapped: %w", codeErr(429)), true},
		{codeErr(503), true},
		{codeErr(400), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("IsRetryableError(%v): got=%v want=%v", tc.err, got, tc.want)
		}
	}
}

func TestNextBackoffCaps(t *testing.T) {
	if got := NextBackoff(4*time.Second, 5*time.Second); got != 5*time.Second {
		t.Fatalf("got=%v", got)
	}
	if got := NextBackoff(time.Second, 0); got != 2*time.Second {
		t.Fatalf("got=%v", got)
	}
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got=%v", err)
	}
}
