package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
)

func TestGetEnv(t *testing.T) {
	log := logger.NewNop()
	t.Setenv("VORHABEN_TEST_STR", "value")
	t.Setenv("VORHABEN_TEST_INT", "42")
	t.Setenv("VORHABEN_TEST_BAD_INT", "x")

	assert.Equal(t, "value", GetEnv("VORHABEN_TEST_STR", "def", log))
	assert.Equal(t, "def", GetEnv("VORHABEN_TEST_MISSING", "def", nil))
	assert.Equal(t, 42, GetEnvAsInt("VORHABEN_TEST_INT", 7, log))
	assert.Equal(t, 7, GetEnvAsInt("VORHABEN_TEST_BAD_INT", 7, log))
	assert.Equal(t, 7, GetEnvAsInt("VORHABEN_TEST_MISSING_INT", 7, nil))
}
