package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"badgeforge-backend/internal/domains/user"
	"badgeforge-backend/internal/domains/user/model"
	"badgeforge-backend/internal/shared"
	"badgeforge-backend/pkg/jwt"
	"badgeforge-backend/pkg/logger"
)

const verificationTokenTTL = 24 * time.Hour

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type userService struct {
	repo  user.Repository
	jwt   *jwt.Manager
	tasks TaskEnqueuer
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager, tasks TaskEnqueuer) user.Service {
	return &userService{
		repo:  repo,
		jwt:   jwtManager,
		tasks: tasks,
	}
}

func (s *userService) Register(ctx context.Context, req *user.RegisterRequest) (*user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.NewEmailAlreadyExists()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, model.NewCreateUserError(err)
	}

	created, err := s.repo.Create(ctx, &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		return nil, model.NewCreateUserError(err)
	}

	token := &model.VerificationToken{
		Token:     uuid.NewString(),
		UserID:    created.ID,
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	}
	if err := s.repo.CreateVerificationToken(ctx, token); err != nil {
		return nil, model.NewCreateUserError(err)
	}

	s.enqueueVerificationEmail(created, token.Token)

	return user.ToResponse(created), nil
}

func (s *userService) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.NewInvalidCredentials()
	}

	return s.tokensFor(u)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return model.NewInvalidToken()
	}

	t, err := s.repo.GetVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if t == nil || t.Expired() {
		return model.NewInvalidToken()
	}

	if err := s.repo.MarkEmailVerified(ctx, t.UserID); err != nil {
		return err
	}
	return s.repo.DeleteVerificationToken(ctx, token)
}

func (s *userService) Refresh(ctx context.Context, req *user.RefreshRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, model.NewInvalidToken()
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, model.NewInvalidToken()
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewInvalidToken()
	}

	return s.tokensFor(u)
}

func (s *userService) Me(ctx context.Context, userID uuid.UUID) (*user.UserResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.NewUserNotFound()
	}
	return user.ToResponse(u), nil
}

func (s *userService) tokensFor(u *model.User) (*user.AuthResponse, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Email, u.EmailVerified)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, err
	}

	return &user.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.ToResponse(u),
	}, nil
}

func (s *userService) enqueueVerificationEmail(u *model.User, token string) {
	payload, err := json.Marshal(shared.VerificationEmailPayload{
		UserID: u.ID.String(),
		Email:  u.Email,
		Token:  token,
	})
	if err != nil {
		return
	}

	task := asynq.NewTask(shared.TypeSendVerificationEmail, payload)
	if _, err := s.tasks.Enqueue(task, asynq.Queue(shared.QueueDefault), asynq.MaxRetry(3)); err != nil {
		logger.Error("Failed to enqueue verification email", err)
	}
}
