package service

import (
	"context"
	"hyperbot/internal/core/port"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// VoiceMatcher finds the voice notes whose keyword occurs in a message body as a whole word.
type VoiceMatcher struct {
	catalog port.VoiceCatalog

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

func NewVoiceMatcher(catalog port.VoiceCatalog) *VoiceMatcher {
	return &VoiceMatcher{catalog: catalog, patterns: make(map[string]*regexp.Regexp)}
}

// Match returns the audio URLs of all matching keywords ordered by keyword. Catalog failures yield none.
func (v *VoiceMatcher) Match(ctx context.Context, body string) []string {
	if strings.TrimSpace(body) == "" || v.catalog == nil {
		return nil
	}

	voices, err := v.catalog.Voices(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load voice catalog")
		return nil
	}

	keywords := make([]string, 0, len(voices))
	for keyword := range voices {
		keywords = append(keywords, keyword)
	}
	slices.Sort(keywords)

	urls := make([]string, 0)
	for _, keyword := range keywords {
		if v.pattern(keyword).MatchString(body) {
			urls = append(urls, voices[keyword])
		}
	}

	return urls
}

func (v *VoiceMatcher) pattern(keyword string) *regexp.Regexp {
	v.mu.Lock()
	defer v.mu.Unlock()

	if re, ok := v.patterns[keyword]; ok {
		return re
	}

	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	v.patterns[keyword] = re

	return re
}
