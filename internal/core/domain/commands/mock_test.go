package commands

import (
	"context"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"strings"
	"sync"
)

type MockTransport struct {
	mu        sync.Mutex
	texts     []string
	media     []domain.Media
	reactions []string
	revoked   []string
	bytesSent []domain.ContentKind

	mediaErr    error
	revokeErr   error
	downloadErr error
	quotedData  []byte
	quotedKind  domain.ContentKind
}

func (m *MockTransport) SendText(_ context.Context, _ string, text string, _ *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *MockTransport) SendMedia(_ context.Context, _ string, media domain.Media, _ *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mediaErr != nil {
		return m.mediaErr
	}
	m.media = append(m.media, media)
	return nil
}

func (m *MockTransport) React(_ context.Context, _ *domain.Message, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, emoji)
	return nil
}

func (m *MockTransport) MarkRead(context.Context, *domain.Message) error { return nil }

func (m *MockTransport) SendPresence(context.Context, string, domain.Presence) error { return nil }

func (m *MockTransport) GroupMetadata(context.Context, string) (domain.GroupInfo, error) {
	return domain.GroupInfo{}, nil
}

func (m *MockTransport) Revoke(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked = append(m.revoked, msg.ID)
	return nil
}

func (m *MockTransport) DownloadQuoted(context.Context, *domain.Message) ([]byte, domain.ContentKind, error) {
	return m.quotedData, m.quotedKind, m.downloadErr
}

func (m *MockTransport) SendMediaBytes(_ context.Context, _ string, kind domain.ContentKind, _ []byte,
	_ *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bytesSent = append(m.bytesSent, kind)
	return nil
}

func (m *MockTransport) SetAbout(context.Context, string) error { return nil }

func (m *MockTransport) Self() string { return "94700000000:3@s.whatsapp.net" }

func (m *MockTransport) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// dispatchContext builds a dispatch context whose Reply goes through the transport.
func (m *MockTransport) dispatchContext(msg *domain.Message, args ...string) *domain.DispatchContext {
	if args == nil {
		args = []string{}
	}

	body := msg.Body()
	return &domain.DispatchContext{
		ChatID:       msg.ChatID,
		Sender:       "555@s.whatsapp.net",
		SenderNumber: "555",
		BotNumber:    "94700000000",
		PushName:     "alice",
		IsCommand:    true,
		Body:         body,
		Args:         args,
		Query:        strings.Join(args, " "),
		Kind:         msg.Kind,
		Quoted:       msg.Quoted,
		Reply: func(ctx context.Context, text string) error {
			return m.SendText(ctx, msg.ChatID, text, msg)
		},
	}
}

type MockStore struct {
	mu      sync.Mutex
	groups  map[string]domain.GroupRecord
	warns   map[string]int
	banned  map[string]string
	env     map[string]string
	failing error
}

func NewMockStore() *MockStore {
	return &MockStore{
		groups: make(map[string]domain.GroupRecord),
		warns:  make(map[string]int),
		banned: make(map[string]string),
		env:    make(map[string]string),
	}
}

func (s *MockStore) GetUser(_ context.Context, id, name string) domain.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, banned := s.banned[id]
	return domain.UserRecord{ID: id, Name: name, Warns: s.warns[id], IsBanned: banned}
}

func (s *MockStore) GetGroup(_ context.Context, id, name string) domain.GroupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.groups[id]; ok {
		return g
	}
	return domain.GroupRecord{ID: id, Name: name}
}

func (s *MockStore) UpdateGroup(_ context.Context, group domain.GroupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	s.groups[group.ID] = group
	return nil
}

func (s *MockStore) ReadEnv(context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env
}

func (s *MockStore) UpdateEnv(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	s.env[key] = value
	return nil
}

func (s *MockStore) InitializeEnv(context.Context, map[string]string) error { return nil }

func (s *MockStore) BanUser(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[id] = reason
	return nil
}

func (s *MockStore) UnbanUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.banned, id)
	return nil
}

func (s *MockStore) AddWarn(_ context.Context, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warns[id]++
	return s.warns[id]
}

func (s *MockStore) ResetWarns(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.warns, id)
	return nil
}

func noopHandler() port.HandlerFunc {
	return port.HandlerFunc(noop)
}
