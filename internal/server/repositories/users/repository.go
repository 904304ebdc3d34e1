// Package users is the account store. Email and username uniqueness is
// enforced by the storage itself, so concurrent registrations of the same
// identity cannot both succeed.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists and looks up accounts.
//
// FindByEmail and FindByID return common.ErrNotFound when nothing matches.
// Create assigns ID and CreatedAt and returns common.ErrConflict when the
// email or username is already taken.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
}
