package auth

import (
	"fmt"

	"github.com/openmill/auxio/internal/config"
	"go.uber.org/zap"
)

// AuthService authenticates the users defined in the static configuration
// and issues access tokens. There is no user store; operators are
// provisioned through the config file.
type AuthService struct {
	jwtHandler *JWTHandler
	hasher     *PasswordHasher
	users      map[string]config.UserConfig
	logger     *zap.Logger
}

func NewAuthService(cfg config.AuthConfig, logger *zap.Logger) *AuthService {
	users := make(map[string]config.UserConfig, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.Username] = u
	}

	return &AuthService{
		jwtHandler: NewJWTHandler(cfg.GetJWTSecret(), cfg.AccessTokenTTL),
		hasher:     NewPasswordHasher(),
		users:      users,
		logger:     logger,
	}
}

// Login verifies credentials and returns an access token with the user role.
func (a *AuthService) Login(username, password string) (token string, role string, err error) {
	user, exists := a.users[username]
	if !exists {
		return "", "", fmt.Errorf("invalid credentials")
	}

	ok, err := a.hasher.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		a.logger.Warn("login failed", zap.String("username", username))
		return "", "", fmt.Errorf("invalid credentials")
	}

	token, err = a.jwtHandler.GenerateAccessToken(user.Username, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}

	a.logger.Info("user logged in",
		zap.String("username", username),
		zap.String("role", user.Role))

	return token, user.Role, nil
}

// ValidateToken parses an access token and returns the granted permissions.
func (a *AuthService) ValidateToken(token string) ([]Permission, *JWTClaims, error) {
	claims, err := a.jwtHandler.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, err
	}

	perms := RoleToPermissions(claims.Role)
	if perms == nil {
		return nil, nil, fmt.Errorf("unknown role: %s", claims.Role)
	}

	return perms, claims, nil
}
