package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setConfigKey(t *testing.T, key, value string) {
	t.Helper()

	original := viper.GetString(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, original) })
}

func TestConfigScriptProvider_InlineWins(t *testing.T) {
	setConfigKey(t, scriptInlineConfigKey, "window.__axe = 1;")
	setConfigKey(t, scriptFileConfigKey, "ignored.js")

	source, err := newConfigScriptProvider().Script(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "window.__axe = 1;", source)
}

func TestConfigScriptProvider_FileBeforeURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axe.min.js")
	require.NoError(t, os.WriteFile(path, []byte("window.__axe = 2;"), 0o600))

	setConfigKey(t, scriptFileConfigKey, path)

	source, err := newConfigScriptProvider().Script(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "window.__axe = 2;", source)
}

func TestConfigScriptProvider_FallsBackToURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("window.__axe = 3;"))
	}))
	defer server.Close()

	setConfigKey(t, scriptURLConfigKey, server.URL)

	source, err := newConfigScriptProvider().Script(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "window.__axe = 3;", source)
}
