package service

import (
	"context"
	"hyperbot/internal/core/domain"
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockTransport struct {
	mock.Mock
	mu    sync.Mutex
	self  string
	texts []string
}

func (m *mockTransport) SendText(ctx context.Context, chatID string, text string, quoted *domain.Message) error {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	args := m.Called(ctx, chatID, text, quoted)
	return args.Error(0)
}

func (m *mockTransport) SendMedia(ctx context.Context, chatID string, media domain.Media,
	quoted *domain.Message) error {
	args := m.Called(ctx, chatID, media, quoted)
	return args.Error(0)
}

func (m *mockTransport) React(ctx context.Context, msg *domain.Message, emoji string) error {
	args := m.Called(ctx, msg, emoji)
	return args.Error(0)
}

func (m *mockTransport) MarkRead(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockTransport) SendPresence(ctx context.Context, chatID string, presence domain.Presence) error {
	args := m.Called(ctx, chatID, presence)
	return args.Error(0)
}

func (m *mockTransport) GroupMetadata(ctx context.Context, chatID string) (domain.GroupInfo, error) {
	args := m.Called(ctx, chatID)
	group, _ := args.Get(0).(domain.GroupInfo)
	return group, args.Error(1)
}

func (m *mockTransport) Revoke(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockTransport) DownloadQuoted(ctx context.Context, msg *domain.Message) ([]byte, domain.ContentKind, error) {
	args := m.Called(ctx, msg)
	data, _ := args.Get(0).([]byte)
	kind, _ := args.Get(1).(domain.ContentKind)
	return data, kind, args.Error(2)
}

func (m *mockTransport) SendMediaBytes(ctx context.Context, chatID string, kind domain.ContentKind, data []byte,
	quoted *domain.Message) error {
	args := m.Called(ctx, chatID, kind, data, quoted)
	return args.Error(0)
}

func (m *mockTransport) SetAbout(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func (m *mockTransport) Self() string {
	return m.self
}

func (m *mockTransport) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}
