package service

import (
	"context"
	"errors"
	"hyperbot/internal/core/domain"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetUser(ctx context.Context, id, name string) domain.UserRecord {
	args := m.Called(ctx, id, name)
	return args.Get(0).(domain.UserRecord)
}

func (m *mockStore) GetGroup(ctx context.Context, id, name string) domain.GroupRecord {
	args := m.Called(ctx, id, name)
	return args.Get(0).(domain.GroupRecord)
}

func (m *mockStore) UpdateGroup(ctx context.Context, group domain.GroupRecord) error {
	return m.Called(ctx, group).Error(0)
}

func (m *mockStore) ReadEnv(ctx context.Context) map[string]string {
	args := m.Called(ctx)
	env, _ := args.Get(0).(map[string]string)
	return env
}

func (m *mockStore) UpdateEnv(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockStore) InitializeEnv(ctx context.Context, defaults map[string]string) error {
	return m.Called(ctx, defaults).Error(0)
}

func (m *mockStore) BanUser(ctx context.Context, id, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockStore) UnbanUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) AddWarn(ctx context.Context, id string) int {
	return m.Called(ctx, id).Int(0)
}

func (m *mockStore) ResetWarns(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestConfigSettingsDefaults(t *testing.T) {
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)

	s := ConfigSettings()

	assert.Equal(t, "!", s.Prefix)
	assert.Equal(t, domain.ModePublic, s.Mode)
	assert.Equal(t, []string{"94787351423"}, s.OwnerNumbers)
	assert.True(t, s.AutoReadStatus)
	assert.True(t, s.AlwaysTyping)
	assert.False(t, s.AlwaysRecording)
	assert.Equal(t, 100, s.MaxFileSizeMB)
}

func TestApplyEnv(t *testing.T) {
	base := domain.Settings{Prefix: "!", Mode: domain.ModePublic, AutoVoice: true, MaxFileSizeMB: 100}

	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, s domain.Settings)
	}{
		{
			name: "mode override",
			env:  map[string]string{EnvMode: "private"},
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, domain.ModePrivate, s.Mode)
			},
		},
		{
			name: "unknown mode falls back to public",
			env:  map[string]string{EnvMode: "everyone"},
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, domain.ModePublic, s.Mode)
			},
		},
		{
			name: "booleans require literal true",
			env:  map[string]string{EnvAutoVoice: "yes", EnvAntilink: "true"},
			check: func(t *testing.T, s domain.Settings) {
				assert.False(t, s.AutoVoice)
				assert.True(t, s.Antilink)
			},
		},
		{
			name: "owner numbers split on comma",
			env:  map[string]string{EnvOwnerNumber: "111, 222,,"},
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, []string{"111", "222"}, s.OwnerNumbers)
			},
		},
		{
			name: "empty prefix and bad size are ignored",
			env:  map[string]string{EnvPrefix: "", EnvMaxFileSize: "big"},
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, "!", s.Prefix)
				assert.Equal(t, 100, s.MaxFileSizeMB)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, ApplyEnv(base, tc.env))
		})
	}
}

func TestEnvValuesRoundTrip(t *testing.T) {
	s := domain.Settings{Prefix: ".", Mode: domain.ModeGroups, OwnerNumbers: []string{"1", "2"}, AutoBio: true,
		MaxFileSizeMB: 50}

	assert.Equal(t, s, ApplyEnv(domain.Settings{}, EnvValues(s)))
}

func TestSettingsProviderCurrent(t *testing.T) {
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)

	store := &mockStore{}
	store.On("ReadEnv", mock.Anything).Return(map[string]string{EnvPrefix: ".", EnvMode: "inbox"})

	s := NewSettingsProvider(store).Current(t.Context())

	assert.Equal(t, ".", s.Prefix)
	assert.Equal(t, domain.ModeInbox, s.Mode)
	assert.Equal(t, "HYPER-MD", s.BotName)
	store.AssertExpectations(t)
}

func TestSettingsProviderWithoutStore(t *testing.T) {
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)

	p := NewSettingsProvider(nil)
	p.Initialize(t.Context())

	assert.Equal(t, "!", p.Current(t.Context()).Prefix)
	assert.ErrorIs(t, p.Update(t.Context(), EnvMode, "private"), domain.ErrStoreUnavailable)
}

func TestSettingsProviderInitialize(t *testing.T) {
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)

	store := &mockStore{}
	store.On("InitializeEnv", mock.Anything, mock.MatchedBy(func(env map[string]string) bool {
		return env[EnvPrefix] == "!" && env[EnvMode] == "public" && env[EnvAlwaysTyping] == "true"
	})).Return(errors.New("locked"))

	require.NotPanics(t, func() { NewSettingsProvider(store).Initialize(t.Context()) })
	store.AssertExpectations(t)
}
