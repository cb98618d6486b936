package service

import (
	"hyperbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	tests := []struct {
		name    string
		isOwner bool
		isGroup bool
		mode    domain.Mode
		want    bool
	}{
		{name: "private denies stranger in dm", mode: domain.ModePrivate, want: false},
		{name: "private denies stranger in group", isGroup: true, mode: domain.ModePrivate, want: false},
		{name: "private allows owner", isOwner: true, mode: domain.ModePrivate, want: true},
		{name: "inbox allows stranger in dm", mode: domain.ModeInbox, want: true},
		{name: "inbox denies stranger in group", isGroup: true, mode: domain.ModeInbox, want: false},
		{name: "inbox allows owner in group", isOwner: true, isGroup: true, mode: domain.ModeInbox, want: true},
		{name: "groups allows stranger in group", isGroup: true, mode: domain.ModeGroups, want: true},
		{name: "groups denies stranger in dm", mode: domain.ModeGroups, want: false},
		{name: "groups allows owner in dm", isOwner: true, mode: domain.ModeGroups, want: true},
		{name: "public allows stranger in dm", mode: domain.ModePublic, want: true},
		{name: "public allows stranger in group", isGroup: true, mode: domain.ModePublic, want: true},
		{name: "unknown mode behaves as public", isGroup: true, mode: domain.Mode("weird"), want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allow(tc.isOwner, tc.isGroup, tc.mode))
		})
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, domain.ModePrivate, domain.ParseMode(" Private "))
	assert.Equal(t, domain.ModeInbox, domain.ParseMode("inbox"))
	assert.Equal(t, domain.ModeGroups, domain.ParseMode("GROUPS"))
	assert.Equal(t, domain.ModePublic, domain.ParseMode(""))
	assert.Equal(t, domain.ModePublic, domain.ParseMode("everyone"))
}
