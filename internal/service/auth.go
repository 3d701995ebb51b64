package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidEmail = errors.New("invalid email")
)

type AuthService interface {
	Login(email string) (*Identity, error)
	ParseToken(token string) (*entity.Player, error)
}

// Identity is what a successful login hands back to the client.
type Identity struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

type authServiceImpl struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(secretKey string, ttl time.Duration) AuthService {
	return &authServiceImpl{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Login issues a token for email. The same email always maps to the same user id.
func (that *authServiceImpl) Login(email string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	username, _, found := strings.Cut(email, "@")
	if !found || username == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	userID := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()

	token, err := that.generateToken(userID, username)
	if err != nil {
		return nil, err
	}

	return &Identity{
		Token:    token,
		UserID:   userID,
		Username: username,
	}, nil
}

func (that *authServiceImpl) ParseToken(tokenString string) (*entity.Player, error) {
	parsed := &claims{}

	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (interface{}, error) {
		return that.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(that.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || parsed.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &entity.Player{
		ID:       parsed.Subject,
		Username: parsed.Username,
	}, nil
}

func (that *authServiceImpl) generateToken(userID, username string) (string, error) {
	now := that.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(that.ttl)),
		},
		Username: username,
	})

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
