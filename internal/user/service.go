package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/auth"
	"github.com/saulo-duarte/quizdeck/internal/config"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type UserService interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	Login(ctx context.Context, dto LoginDTO) (*User, *TokenPair, error)
	GoogleLogin(ctx context.Context, code string) (*User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type userService struct {
	repo   UserRepository
	google GoogleProvider
}

func NewService(repo UserRepository, google GoogleProvider) UserService {
	return &userService{repo: repo, google: google}
}

func (s *userService) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	log := config.WithContext(ctx)

	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	if dto.Name == "" || dto.Email == "" || len(dto.Password) < 8 {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	u := &User{
		ID:           uuid.New(),
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: &hashStr,
		Provider:     ProviderLocal,
		Role:         string(auth.RoleUser),
	}

	if err := s.repo.Create(u); err != nil {
		if !errors.Is(err, ErrEmailTaken) {
			log.WithError(err).Error("Failed to create user")
		}
		return nil, err
	}

	log.WithField("user_id", u.ID.String()).Info("User registered")
	return u, nil
}

func (s *userService) Login(ctx context.Context, dto LoginDTO) (*User, *TokenPair, error) {
	log := config.WithContext(ctx)

	u, err := s.repo.FindByEmail(strings.TrimSpace(strings.ToLower(dto.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		log.WithError(err).Error("Failed to load user for login")
		return nil, nil, err
	}

	if u.PasswordHash == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		log.WithError(err).Error("Failed to issue session tokens")
		return nil, nil, err
	}
	return u, tokens, nil
}

func (s *userService) GoogleLogin(ctx context.Context, code string) (*User, *TokenPair, error) {
	log := config.WithContext(ctx)

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		log.WithError(err).Warn("Google code exchange failed")
		return nil, nil, ErrInvalidCredentials
	}

	info, err := s.google.FetchUserInfo(ctx, token)
	if err != nil {
		log.WithError(err).Error("Failed to fetch Google user info")
		return nil, nil, err
	}

	u, err := s.repo.FindByEmail(strings.ToLower(info.Email))
	if errors.Is(err, ErrUserNotFound) {
		u = &User{
			ID:       uuid.New(),
			Name:     info.Name,
			Email:    strings.ToLower(info.Email),
			Provider: ProviderGoogle,
			Role:     string(auth.RoleUser),
		}
		if err := s.repo.Create(u); err != nil {
			log.WithError(err).Error("Failed to create Google user")
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	if token.RefreshToken != "" {
		encrypted, err := config.Encrypt(token.RefreshToken)
		if err != nil {
			log.WithError(err).Error("Failed to encrypt Google refresh token")
			return nil, nil, err
		}
		u.GoogleRefreshToken = &encrypted
		if err := s.repo.Update(u); err != nil {
			log.WithError(err).Error("Failed to store Google refresh token")
			return nil, nil, err
		}
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ValidateJWT(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := claims.SubjectID()
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.repo.FindByID(parsed)
}

func (s *userService) issueTokens(u *User) (*TokenPair, error) {
	access, err := auth.GenerateJWT(u.ID.String(), u.Role, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateJWT(u.ID.String(), u.Role, refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
