package apierr

import (
	"errors"
	"net/http"
	"testing"

	domainagg "github.com/yungbote/vorhaben-backend/internal/domain/aggregates"
)

func TestFromErrorMapsCodes(t *testing.T) {
	cases := []struct {
		code domainagg.ErrorCode
		want int
	}{
		{domainagg.CodeValidation, http.StatusBadRequest},
		{domainagg.CodeNotFound, http.StatusNotFound},
		{domainagg.CodeConflict, http.StatusConflict},
		{domainagg.CodeInvariantViolation, http.StatusConflict},
		{domainagg.CodeGenerationFailed, http.StatusBadGateway},
		{domainagg.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := FromError(domainagg.NewError(tc.code, "op", "boom", nil))
		if got.Status != tc.want {
			t.Fatalf("code %s: got=%d want=%d", tc.code, got.Status, tc.want)
		}
	}
}

func TestFromErrorKeepsUserMessage(t *testing.T) {
	got := FromError(domainagg.NewError(domainagg.CodeValidation, "instructions.Validate", "Section 9.9 not found", nil))
	if got.Error() != "Section 9.9 not found" {
		t.Fatalf("unexpected message: %q", got.Error())
	}
}

func TestFromErrorHidesUnknownErrors(t *testing.T) {
	got := FromError(errors.New("pq: password authentication failed"))
	if got.Status != http.StatusInternalServerError || got.Error() != "internal error" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
}
