// Package download implements the download plugin: it fetches each entry's
// url into a destination directory during the download phase.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/fetchd/internal/plugin"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

// Name is the configuration keyword.
const Name = "download"

// FieldFile is the entry field recording where the content was written.
const FieldFile = "file"

// Plugin downloads entry content.
//
// Configuration:
//
//	download: /path/to/dir
//
// or
//
//	download:
//	    path: /path/to/dir
//
// A fetch failure marks the entry failed; the run continues with the rest.
type Plugin struct {
	*plugin.Base
	client *http.Client
}

// New creates the download plugin. A nil client uses a default with a 60s
// timeout.
func New(client *http.Client) *Plugin {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	p := &Plugin{client: client}
	p.Base = plugin.NewBase(Name)
	p.Base.On(task.PhaseDownload, 0, p.download)
	return p
}

func (p *Plugin) download(ctx context.Context, t *task.Task) error {
	dir, err := destination(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	for _, e := range t.Entries {
		if !e.Has(task.FieldURL) {
			t.Fail(ctx, e, "entry has no url")
			continue
		}
		path := filepath.Join(dir, safeFilename(e.Title()))
		if err := p.fetch(ctx, e.URL(), path); err != nil {
			t.Fail(ctx, e, err.Error())
			continue
		}
		e.Set(FieldFile, path)
	}
	return nil
}

func (p *Plugin) fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func destination(t *task.Task) (string, error) {
	cfg, _ := t.PluginConfig(Name)
	switch c := cfg.(type) {
	case string:
		if c == "" {
			return "", fmt.Errorf("download path must not be empty")
		}
		return c, nil
	case map[string]any:
		path, ok := c["path"].(string)
		if !ok || path == "" {
			return "", fmt.Errorf("download configuration is missing path")
		}
		return path, nil
	default:
		return "", fmt.Errorf("download configuration must be a path string or a map with a path field")
	}
}

// safeFilename flattens a title into something the filesystem accepts.
func safeFilename(title string) string {
	if title == "" {
		return "entry"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, title)
}

// ConfigValidator implements task.ValidatorProvider.
func (p *Plugin) ConfigValidator() (task.ConfigValidator, error) {
	return validator{}, nil
}

type validator struct{}

func (validator) ValidateConfig(cfg any) []string {
	switch c := cfg.(type) {
	case string:
		if c == "" {
			return []string{"path must not be empty"}
		}
		return nil
	case map[string]any:
		if path, ok := c["path"].(string); !ok || path == "" {
			return []string{"path is missing"}
		}
		return nil
	default:
		return []string{"must be a path string or a map with a path field"}
	}
}
