package service

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSpamTrackerAllow(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base

	tests := []struct {
		name    string
		advance time.Duration
		sender  string
		want    bool
	}{
		{name: "first message", sender: "a", want: true},
		{name: "second message within burst", sender: "a", want: true},
		{name: "third message exceeds burst", sender: "a", want: false},
		{name: "other sender has own bucket", sender: "b", want: true},
		{name: "refilled after interval", advance: 10 * time.Second, sender: "a", want: true},
	}

	tracker := newSpamTracker(10*time.Second, 2)
	tracker.now = func() time.Time { return now }

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = now.Add(tt.advance)
			assert.Equal(t, tt.want, tracker.Allow("group@g.us", tt.sender))
		})
	}
}

func TestSpamTrackerSeparatesChats(t *testing.T) {
	tracker := newSpamTracker(time.Hour, 1)

	assert.True(t, tracker.Allow("one@g.us", "a"))
	assert.False(t, tracker.Allow("one@g.us", "a"))
	assert.True(t, tracker.Allow("two@g.us", "a"))
}

func TestSpamTrackerPrune(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker := newSpamTracker(time.Second, 2)
	tracker.now = func() time.Time { return base }

	tracker.Allow("group@g.us", "a")
	tracker.prune(base.Add(time.Second))
	assert.Equal(t, 1, tracker.Len())

	tracker.prune(base.Add(time.Minute))
	assert.Equal(t, 0, tracker.Len())
}

func TestNewSpamTracker(t *testing.T) {
	viper.Set("group.spam_rate", "3s")
	viper.Set("group.spam_burst", 4)
	t.Cleanup(viper.Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := NewSpamTracker(ctx)

	assert.NotNil(t, tracker.entries)
	assert.Equal(t, 3*time.Second, tracker.every)
	assert.Equal(t, 4, tracker.burst)
}

func TestNewSpamTrackerInvalidRate(t *testing.T) {
	viper.Set("group.spam_rate", "often")
	viper.Set("group.spam_burst", 0)
	t.Cleanup(viper.Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracker := NewSpamTracker(ctx)

	assert.Equal(t, 5*time.Second, tracker.every)
	assert.Equal(t, 5, tracker.burst)
}
