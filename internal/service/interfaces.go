package service

import (
	"context"
	"iter"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, in RecipeInput) (*model.Recipe, error)
	Get(ctx context.Context, id uint) (*model.Recipe, error)
	List(ctx context.Context, opts ListOptions) ([]model.Recipe, error)
	Iterate(ctx context.Context, opts ListOptions) iter.Seq2[*model.Recipe, error]
	Count(ctx context.Context, opts ListOptions) (int64, error)
	Update(ctx context.Context, id uint, patch RecipePatch) (*model.Recipe, error)
	SetImage(ctx context.Context, id uint, ref string) (*model.Recipe, error)
	Delete(ctx context.Context, id uint) error
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	CreateAdmin(ctx context.Context, username, password string) (*model.AdminUser, error)
	Login(ctx context.Context, username, password string) (*types.LoginResponse, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	Authenticate(ctx context.Context, token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
}

var (
	_ IRecipeService = (*RecipeService)(nil)
	_ IAuthService   = (*AuthService)(nil)
)
