package token

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"singmerge/internal/infrastructure/auth"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTokenCommand(t *testing.T) {
	config := writeConfig(t, "logger:\n  level: error\nauth:\n  jwt_secret: s3cret\n")

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", config, "--subject", "ci", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	claims, err := auth.NewJWTService("s3cret", "singmerge").VerifyScope(strings.TrimSpace(out.String()), auth.ScopePublish)
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestTokenCommand_NoSecret(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", writeConfig(t, "logger:\n  level: error\n")})
	assert.ErrorContains(t, cmd.Execute(), "jwt_secret")
}
