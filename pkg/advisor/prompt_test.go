package advisor

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildUserPrompt(t *testing.T) {
	out, err := buildUserPrompt("AAPL", "[Daily] price=150.00")
	require.NoError(t, err)
	require.Contains(t, out, "Symbol: AAPL")
	require.Contains(t, out, "[Daily] price=150.00")
}

func TestPromptTemplate(t *testing.T) {
	content := "Ticker {{.Symbol}}:\n{{.Summary}}\nAnswer with JSON only.\n"
	path := filepath.Join(t.TempDir(), "advise.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tmpl, err := NewPromptTemplate(path, nil)
	require.NoError(t, err)

	out, err := tmpl.Render(struct{ Symbol, Summary string }{
		Symbol:  "MSFT",
		Summary: "[Weekly] RSI14=55.0",
	})
	require.NoError(t, err)
	require.Equal(t, "Ticker MSFT:\n[Weekly] RSI14=55.0\nAnswer with JSON only.\n", out)

	sum := sha256.Sum256([]byte(content))
	require.Equal(t, hex.EncodeToString(sum[:]), tmpl.Digest())
}

func TestPromptTemplateErrors(t *testing.T) {
	_, err := NewPromptTemplate("  ", nil)
	require.Error(t, err)

	_, err = NewPromptTemplate(filepath.Join(t.TempDir(), "missing.tmpl"), nil)
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(bad, []byte("{{.Symbol"), 0o644))
	_, err = NewPromptTemplate(bad, nil)
	require.Error(t, err)
}
