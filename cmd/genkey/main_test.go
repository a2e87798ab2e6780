package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

func TestRun_Mint(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-env", "test"}, &out))

	var plain, hashed string
	for _, line := range strings.Split(out.String(), "\n") {
		if v, ok := strings.CutPrefix(line, "METAMIND_API_KEY="); ok {
			plain = v
		}
		if v, ok := strings.CutPrefix(line, "API_KEY="); ok {
			hashed = v
		}
	}

	assert.True(t, domain.IsValidFormat(plain))
	assert.True(t, strings.HasPrefix(plain, "mm_test_"))
	assert.True(t, domain.APIKeyMatches(plain, hashed))
}

func TestRun_HashExisting(t *testing.T) {
	key := "mm_live_" + strings.Repeat("a", 32)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-hash", key}, &out))
	assert.Equal(t, "API_KEY=sha256:"+domain.HashAPIKey(key)+"\n", out.String())

	out.Reset()
	assert.Error(t, run([]string{"-hash", "not-a-key"}, &out))
	assert.Empty(t, out.String())
}

func TestRun_BadEnvironment(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run([]string{"-env", "prod"}, &out), domain.ErrInvalidKeyEnvironment)
}
