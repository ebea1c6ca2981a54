package fakeapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	errWrongTokenType = errors.New("wrong token type")
	errTokenRevoked   = errors.New("token revoked")
)

// claims follows the shape of simplejwt tokens: a user id and a token type.
// Gen ties a token to a revocation generation of the server.
type claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	Gen       int    `json:"gen"`
}

type issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *issuer {
	return &issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (i *issuer) sign(userID int64, tokenType string, gen int, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
		Gen:       gen,
	})
	return token.SignedString(i.secret)
}

func (i *issuer) access(userID int64, gen int) (string, error) {
	return i.sign(userID, tokenTypeAccess, gen, i.accessTTL)
}

func (i *issuer) pair(userID int64, gen int) (models.TokenPair, error) {
	access, err := i.access(userID, gen)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := i.sign(userID, tokenTypeRefresh, gen, i.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// parse verifies signature, expiry and type, and rejects tokens older than
// minGen.
func (i *issuer) parse(raw, tokenType string, minGen int) (*claims, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if c.TokenType != tokenType {
		return nil, fmt.Errorf("%w: %s", errWrongTokenType, c.TokenType)
	}
	if c.Gen < minGen {
		return nil, errTokenRevoked
	}
	return c, nil
}
