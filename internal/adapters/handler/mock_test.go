package handler

import (
	"context"
	"errors"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"sync"
)

// fakeTransport records every outbound call as a short event string.
type fakeTransport struct {
	mu       sync.Mutex
	self     string
	events   []string
	group    domain.GroupInfo
	mediaErr error
}

func (f *fakeTransport) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf(format, args...))
}

func (f *fakeTransport) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *fakeTransport) SendText(_ context.Context, chatID string, text string, _ *domain.Message) error {
	f.record("text %s %s", chatID, text)
	return nil
}

func (f *fakeTransport) SendMedia(_ context.Context, chatID string, media domain.Media, _ *domain.Message) error {
	if f.mediaErr != nil {
		return f.mediaErr
	}
	f.record("media %s %s %s", chatID, media.Kind, media.URL)
	return nil
}

func (f *fakeTransport) React(_ context.Context, msg *domain.Message, emoji string) error {
	f.record("react %s %s", msg.ID, emoji)
	return nil
}

func (f *fakeTransport) MarkRead(_ context.Context, msg *domain.Message) error {
	f.record("read %s", msg.ID)
	return nil
}

func (f *fakeTransport) SendPresence(_ context.Context, chatID string, presence domain.Presence) error {
	f.record("presence %s %s", chatID, presence)
	return nil
}

func (f *fakeTransport) GroupMetadata(_ context.Context, _ string) (domain.GroupInfo, error) {
	return f.group, nil
}

func (f *fakeTransport) Revoke(_ context.Context, msg *domain.Message) error {
	f.record("revoke %s", msg.ID)
	return nil
}

func (f *fakeTransport) DownloadQuoted(_ context.Context, _ *domain.Message) ([]byte, domain.ContentKind, error) {
	return nil, "", domain.ErrNoQuotedMedia
}

func (f *fakeTransport) SendMediaBytes(_ context.Context, chatID string, kind domain.ContentKind, _ []byte,
	_ *domain.Message) error {
	f.record("bytes %s %s", chatID, kind)
	return nil
}

func (f *fakeTransport) SetAbout(_ context.Context, text string) error {
	f.record("about %s", text)
	return nil
}

func (f *fakeTransport) Self() string {
	return f.self
}

type staticSettings struct {
	settings domain.Settings
}

func (s staticSettings) Current(context.Context) domain.Settings {
	return s.settings
}

type staticVoices []string

func (v staticVoices) Match(context.Context, string) []string {
	return v
}

// bannedStore reports every user in banned as banned. Other Store methods are not used by the pipeline.
type bannedStore struct {
	port.Store
	banned map[string]bool
}

func (s bannedStore) GetUser(_ context.Context, id, name string) domain.UserRecord {
	return domain.UserRecord{ID: id, Name: name, IsBanned: s.banned[id]}
}

var errMedia = errors.New("media unavailable")
