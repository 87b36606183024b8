package cmdutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "docker ps -a", Normalize("  Docker PS -a "))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "git commit", Normalize("git commit"))
}

func TestTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"git", "commit", "-m", "fix the bug"}, Tokens(`git commit -m "fix the bug"`))
	assert.Equal(t, []string{"docker", "ps", "-a"}, Tokens("docker ps -a"))
	assert.Empty(t, Tokens(""))

	// Unbalanced quotes fall back to whitespace splitting.
	assert.Equal(t, []string{"echo", `"oops`}, Tokens(`echo "oops`))
}

func TestFirstToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "kubectl", FirstToken("kubectl get pods -n kube-system"))
	assert.Equal(t, "", FirstToken("  "))
}
