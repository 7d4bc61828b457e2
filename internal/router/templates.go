package router

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"

	pkgerrors "graphlearn/pkg/errors"
)

// TemplateLoader fetches view template markup by its path, e.g.
// "/pages/home.html".
type TemplateLoader interface {
	Load(ctx context.Context, template string) (string, error)
}

// HTTPTemplateLoader fetches templates from a web server.
type HTTPTemplateLoader struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTemplateLoader creates a loader rooted at baseURL.
func NewHTTPTemplateLoader(baseURL string, client *http.Client) *HTTPTemplateLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTemplateLoader{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (l *HTTPTemplateLoader) Load(ctx context.Context, template string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+template, nil)
	if err != nil {
		return "", pkgerrors.NewTemplateLoadError(template, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", pkgerrors.NewTemplateLoadError(template, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", pkgerrors.NewTemplateLoadError(template, fmt.Errorf("unexpected status: %s", resp.Status))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgerrors.NewTemplateLoadError(template, err)
	}
	return string(body), nil
}

// FSTemplateLoader reads templates from a file system, typically the
// templates embedded in the binary.
type FSTemplateLoader struct {
	fsys fs.FS
}

// NewFSTemplateLoader creates a loader over fsys.
func NewFSTemplateLoader(fsys fs.FS) *FSTemplateLoader {
	return &FSTemplateLoader{fsys: fsys}
}

func (l *FSTemplateLoader) Load(ctx context.Context, template string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", pkgerrors.NewTemplateLoadError(template, err)
	}
	data, err := fs.ReadFile(l.fsys, strings.TrimPrefix(template, "/"))
	if err != nil {
		return "", pkgerrors.NewTemplateLoadError(template, err)
	}
	return string(data), nil
}
