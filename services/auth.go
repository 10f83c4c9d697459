package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

// AuthUser là người dùng phía nhà cung cấp xác thực.
type AuthUser struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	AvatarURL string
}

type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         AuthUser
}

// AuthProvider đổi mã OAuth lấy phiên đăng nhập.
type AuthProvider interface {
	ExchangeCode(ctx context.Context, code, verifier string) (*AuthSession, error)
}

const (
	NextOnboarding = "/onboarding"
	NextDashboard  = "/dashboard"
)

// SignIn đổi code lấy phiên và tạo hồ sơ student ở lần đăng nhập đầu. next là
// trang client nên chuyển tới.
func (s *Services) SignIn(ctx context.Context, code, verifier string) (*AuthSession, string, error) {
	session, err := s.Auth.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, "", err
	}
	next, err := s.provision(ctx, session.User)
	if err != nil {
		return nil, "", err
	}
	return session, next, nil
}

func (s *Services) provision(ctx context.Context, au AuthUser) (string, error) {
	existing, err := s.Store.GetUser(ctx, au.ID)
	switch {
	case err == nil:
		if existing.Grade == nil {
			return NextOnboarding, nil
		}
		return NextDashboard, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return "", err
	}

	profile := &models.User{
		ID:        au.ID,
		Email:     au.Email,
		FullName:  optional(au.FullName),
		AvatarURL: optional(au.AvatarURL),
		Role:      models.RoleStudent,
	}
	if err := s.Store.CreateUser(ctx, profile); err != nil {
		// hồ sơ chưa tạo được; người dùng vẫn vào dashboard và sẽ bị hỏi lại ở lần sau
		s.Log.Error("create user profile failed", zap.String("user_id", au.ID.String()), zap.Error(err))
		return NextDashboard, nil
	}
	return NextOnboarding, nil
}
