// Package rss implements the rss input plugin: it fetches an RSS or Atom
// feed and produces one entry per item.
package rss

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/fyrsmithlabs/fetchd/internal/plugin"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

// Name is the configuration keyword.
const Name = "rss"

// Plugin fetches and parses a feed during the input phase.
//
// Both configuration forms are supported:
//
//	rss: https://example.org/feed.xml
//
// and
//
//	rss:
//	    url: https://example.org/feed.xml
//	    priority: 10
type Plugin struct {
	*plugin.Base
	client *http.Client
	parser *gofeed.Parser
}

// New creates the rss plugin. A nil client uses a default with a 30s
// timeout.
func New(client *http.Client) *Plugin {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	p := &Plugin{
		client: client,
		parser: gofeed.NewParser(),
	}
	p.Base = plugin.NewBase(Name)
	p.Base.On(task.PhaseInput, 0, p.input)
	return p
}

func (p *Plugin) input(ctx context.Context, t *task.Task) error {
	url, err := t.InputURL(Name)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		// Transient network conditions should not kill the run.
		return &task.Warning{Reason: fmt.Sprintf("unable to fetch feed %s: %v", url, err), LogOnce: true}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &task.Warning{Reason: fmt.Sprintf("feed %s returned status %d", url, resp.StatusCode), LogOnce: true}
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return &task.Warning{Reason: fmt.Sprintf("unable to parse feed %s: %v", url, err), LogOnce: true}
	}

	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		e := task.NewEntry(item.Title, item.Link)
		if item.Description != "" {
			e.Set("description", item.Description)
		}
		if item.PublishedParsed != nil {
			e.Set("published", *item.PublishedParsed)
		}
		if !e.IsValid() {
			continue
		}
		t.Entries = append(t.Entries, e)
	}
	return nil
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
			return []string{"url must not be empty"}
		}
		return nil
	case map[string]any:
		url, ok := c[task.FieldURL].(string)
		if !ok || url == "" {
			return []string{"url is missing"}
		}
		return nil
	default:
		return []string{"must be a url string or a map with a url field"}
	}
}
