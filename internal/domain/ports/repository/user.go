package repository

import (
	"context"

	"github.com/Vahe555123/busines/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
}
