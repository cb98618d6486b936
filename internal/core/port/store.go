package port

import (
	"context"
	"hyperbot/internal/core/domain"
)

// Store persists user, group and env records. Every read returns sane defaults when the backing store is
// unavailable.
type Store interface {
	GetUser(ctx context.Context, id, name string) domain.UserRecord
	GetGroup(ctx context.Context, id, name string) domain.GroupRecord
	UpdateGroup(ctx context.Context, group domain.GroupRecord) error
	ReadEnv(ctx context.Context) map[string]string
	UpdateEnv(ctx context.Context, key, value string) error
	InitializeEnv(ctx context.Context, defaults map[string]string) error
	BanUser(ctx context.Context, id, reason string) error
	UnbanUser(ctx context.Context, id string) error
	AddWarn(ctx context.Context, id string) int
	ResetWarns(ctx context.Context, id string) error
}
