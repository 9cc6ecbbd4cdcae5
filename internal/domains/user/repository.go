package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"badgeforge-backend/internal/domains/user/model"
)

type Repository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	// GetByEmail returns (nil, nil) when no account uses the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// FindIDByEmail resolves an email to a user ID, erroring when the
	// account does not exist. Used by issuer staff management.
	FindIDByEmail(ctx context.Context, email string) (uuid.UUID, error)
	// CanCreateIssuers reports whether the account is approved to
	// create issuers. False for unknown accounts.
	CanCreateIssuers(ctx context.Context, userID uuid.UUID) (bool, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error

	CreateVerificationToken(ctx context.Context, token *model.VerificationToken) error
	// GetVerificationToken returns (nil, nil) when the token is unknown.
	GetVerificationToken(ctx context.Context, token string) (*model.VerificationToken, error)
	DeleteVerificationToken(ctx context.Context, token string) error
	// DeleteExpiredTokens sweeps tokens past their expiry. Returns the
	// number of rows removed.
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	Refresh(ctx context.Context, req *RefreshRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error)
}
