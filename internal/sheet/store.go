package sheet

import (
	"context"

	"github.com/udisondev/wwsheet/internal/model"
)

var (
	ErrNotFound         = model.ErrNotFound
	ErrPermissionDenied = model.ErrPermissionDenied
)

// Store is the persistence collaborator. Every method fails with an error
// wrapping ErrNotFound or ErrPermissionDenied when applicable; such failures
// abort the triggering operation only.
type Store interface {
	GetEntity(ctx context.Context, id string) (*model.Entity, error)
	UpdateEntity(ctx context.Context, id string, patch model.Patch) error
	CreateEmbedded(ctx context.Context, entityID string, batch model.Embedded) error
	DeleteEmbedded(ctx context.Context, entityID string, kind model.EmbeddedKind, ids []string) error
}

// Messenger posts rendered outcome messages to the shared log. Delivery is
// fire-and-forget.
type Messenger interface {
	PostOutcomeMessage(ctx context.Context, entityID, html string) error
}
