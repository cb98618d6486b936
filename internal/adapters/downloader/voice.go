package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// VoiceCatalog fetches the keyword to voice note mapping from a JSON document and caches it for ttl.
type VoiceCatalog struct {
	url    string
	ttl    time.Duration
	client *http.Client
	now    func() time.Time

	mu      sync.Mutex
	voices  map[string]string
	fetched time.Time
}

func NewVoiceCatalog(url string, ttl time.Duration) *VoiceCatalog {
	return &VoiceCatalog{url: url, ttl: ttl, client: &http.Client{}, now: time.Now}
}

// Voices returns the cached catalog, refreshing it when expired. A failed refresh keeps serving the
// previous copy if there is one.
func (c *VoiceCatalog) Voices(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.voices != nil && c.now().Sub(c.fetched) < c.ttl {
		return c.voices, nil
	}

	voices, err := c.fetch(ctx)
	if err != nil {
		if c.voices != nil {
			log.Warn().Err(err).Msg("failed to refresh voice catalog, serving stale copy")
			return c.voices, nil
		}
		return nil, err
	}

	log.Debug().Int("voices", len(voices)).Msg("voice catalog refreshed")
	c.voices = voices
	c.fetched = c.now()

	return voices, nil
}

func (c *VoiceCatalog) fetch(ctx context.Context) (map[string]string, error) {
	if c.url == "" {
		return map[string]string{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating voice catalog request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing voice catalog request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code on voice catalog: %d", res.StatusCode)
	}

	voices := make(map[string]string)
	if err := json.NewDecoder(res.Body).Decode(&voices); err != nil {
		return nil, fmt.Errorf("error decoding voice catalog: %w", err)
	}

	return voices, nil
}
