package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsHashesOwnersAndRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"owner_email", "a@example.com",
		"openai_api_key", "sk-123",
		"section_id", "2.1",
	})
	if len(out) != 6 {
		t.Fatalf("unexpected kv length: %d", len(out))
	}
	if got, _ := out[1].(string); !strings.HasPrefix(got, "hash:") {
		t.Fatalf("owner_email should be hashed, got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("api key should be redacted, got=%v", out[3])
	}
	if out[5] != "2.1" {
		t.Fatalf("section_id should pass through, got=%v", out[5])
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	log := NewNop().With("service", "test")
	log.Info("hello", "k", "v")
	log.Sync()
}
