package auth

import (
	"context"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Service struct {
	db     *gorm.DB
	tokens *TokenManager
}

func NewService(db *gorm.DB, tokens *TokenManager) *Service {
	return &Service{db: db, tokens: tokens}
}

// Resolve returns the user a token was issued to.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	user, err := s.findByUsername(ctx, claims.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrUnauthenticated
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(password, user.Password) {
		return nil, apperror.ErrUnauthenticated.WithMessage("Incorrect username or password")
	}
	if !user.Active() {
		return nil, apperror.ErrAccountInactive
	}

	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: accessToken, TokenType: TokenType}, nil
}

func (s *Service) findByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by username")
	}
	return &user, nil
}
