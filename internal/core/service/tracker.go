package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

type Tracker interface {
	// Allow reports whether sender may post another message in chat without being flagged as spam.
	Allow(chatID, sender string) bool
}

type spamEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SpamTracker keeps one token bucket per sender and chat. Idle buckets are pruned periodically.
type SpamTracker struct {
	entries map[string]*spamEntry
	every   time.Duration
	burst   int
	idle    time.Duration
	mutex   *sync.Mutex
	now     func() time.Time
}

func NewSpamTracker(ctx context.Context) *SpamTracker {
	every, err := time.ParseDuration(viper.GetString("group.spam_rate"))
	if err != nil || every <= 0 {
		log.Warn().Err(err).Str("value", viper.GetString("group.spam_rate")).
			Msg("invalid spam rate in config, using 5s")
		every = 5 * time.Second
	}

	burst := viper.GetInt("group.spam_burst")
	if burst <= 0 {
		burst = 5
	}

	st := newSpamTracker(every, burst)

	go st.Prune(ctx, time.Minute)

	return st
}

func newSpamTracker(every time.Duration, burst int) *SpamTracker {
	return &SpamTracker{
		entries: make(map[string]*spamEntry),
		every:   every,
		burst:   burst,
		idle:    every * time.Duration(burst) * 2,
		mutex:   &sync.Mutex{},
		now:     time.Now,
	}
}

func (t *SpamTracker) Allow(chatID, sender string) bool {
	key := chatID + "|" + sender
	now := t.now()

	t.mutex.Lock()
	entry, ok := t.entries[key]
	if !ok {
		entry = &spamEntry{limiter: rate.NewLimiter(rate.Every(t.every), t.burst)}
		t.entries[key] = entry
	}
	entry.lastSeen = now
	t.mutex.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Prune drops buckets idle for longer than it takes them to refill, until ctx is done.
func (t *SpamTracker) Prune(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Debug().Int("tracked", t.Len()).Msg("pruning spam tracker")
			t.prune(t.now())
		case <-ctx.Done():
			log.Debug().Msg("stopping spam tracker pruning")
			return
		}
	}
}

func (t *SpamTracker) prune(now time.Time) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for key, entry := range t.entries {
		if now.Sub(entry.lastSeen) > t.idle {
			delete(t.entries, key)
		}
	}
}

func (t *SpamTracker) Len() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return len(t.entries)
}
