package auth

import (
	"fmt"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/config"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

// Service issues and validates stateless access tokens for the mini-app.
// Tokens are self-contained: logging out only drops the metering session,
// the token simply ages out.
type Service struct {
	jwt       *JWTManager
	adminIDs  map[int64]struct{}
	friendIDs map[int64]struct{}
}

func NewService(jwtManager *JWTManager, cfg config.AuthConfig) *Service {
	admins := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}
	friends := make(map[int64]struct{}, len(cfg.FriendIDs))
	for _, id := range cfg.FriendIDs {
		friends[id] = struct{}{}
	}

	return &Service{
		jwt:       jwtManager,
		adminIDs:  admins,
		friendIDs: friends,
	}
}

// LoginTelegram exchanges telegram init data for an access token. The role
// baked into the token comes from the configured id lists; everyone else is
// a regular user.
func (s *Service) LoginTelegram(initData string) (AuthResult, error) {
	if err := ValidateTelegramInitData(initData); err != nil {
		return AuthResult{}, err
	}

	userID, err := ResolveTelegramUserID(initData)
	if err != nil {
		return AuthResult{}, fmt.Errorf("resolve telegram user id: %w", err)
	}

	role := s.roleFor(userID)

	sid, err := NewSessionID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(userID, sid, string(role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		AccessExpires: accessExpires,
		Me: Me{
			ID:   userID,
			Role: string(role),
		},
	}, nil
}

func (s *Service) ValidateAccessToken(accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) roleFor(userID int64) enums.Role {
	if _, ok := s.adminIDs[userID]; ok {
		return enums.RoleAdmin
	}
	if _, ok := s.friendIDs[userID]; ok {
		return enums.RoleFriend
	}
	return enums.RoleUser
}
