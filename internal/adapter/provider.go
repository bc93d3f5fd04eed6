package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	m "axegrind.dev/pkg/axegrind/internal/model"
)

// ScriptProvider supplies the injection payload source. A load failure is a
// setup error, raised before any context switching begins; it is distinct
// from a script-runtime error.
type ScriptProvider interface {
	Script(ctx context.Context) (string, error)
}

// StringProvider serves a payload held in memory.
type StringProvider string

// Script returns the in-memory payload.
func (p StringProvider) Script(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.TrimSpace(string(p)) == "" {
		return "", fmt.Errorf("load script: empty payload")
	}

	return string(p), nil
}

// FileProvider reads the payload from disk, e.g. a local axe.min.js.
type FileProvider struct {
	Path m.Path
}

// NewFileProvider creates a provider for the script at path.
func NewFileProvider(path m.Path) *FileProvider {
	return &FileProvider{Path: path}
}

// Script loads the payload from the provider's path.
func (p *FileProvider) Script(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content, err := os.ReadFile(string(p.Path))
	if err != nil {
		return "", fmt.Errorf("load script from %s: %w", p.Path, err)
	}

	return string(content), nil
}

// defaultFetchTimeout bounds a payload download; the injection itself is
// never subject to it.
const defaultFetchTimeout = 30 * time.Second

// URLProvider downloads the payload over HTTP, e.g. from the axe-core CDN.
type URLProvider struct {
	URL    string
	Client *http.Client
}

// NewURLProvider creates a provider that downloads the script from url.
func NewURLProvider(url string) *URLProvider {
	return &URLProvider{
		URL:    url,
		Client: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// Script downloads the payload.
func (p *URLProvider) Script(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return "", fmt.Errorf("load script from %s: %w", p.URL, err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("load script from %s: %w", p.URL, err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("load script from %s: unexpected status %s", p.URL, resp.Status)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("load script from %s: %w", p.URL, err)
	}

	return string(content), nil
}
