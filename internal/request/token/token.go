package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/watheeq/watheeq-backend/pkg/config"
	"github.com/watheeq/watheeq-backend/pkg/errors"
)

// NewUploadToken generates the opaque token handed to the camera operator
// with the admin link. 24 random bytes, URL-safe.
func NewUploadToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", errors.InternalWrap(err, "failed to generate upload token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DownloadTokenManager issues and verifies the signed tokens embedded in
// video download links.
type DownloadTokenManager struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewDownloadTokenManager creates a download token manager
func NewDownloadTokenManager(cfg config.JWTConfig) *DownloadTokenManager {
	return &DownloadTokenManager{
		secret: []byte(cfg.Secret),
		expiry: cfg.DownloadExpiry,
		issuer: cfg.Issuer,
	}
}

// Issue signs a download token bound to the request ID and returns it with
// its expiry time.
func (m *DownloadTokenManager) Issue(requestID int64) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(m.expiry)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(requestID, 10),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.InternalWrap(err, "failed to sign download token")
	}
	return token, expiresAt, nil
}

// Verify checks the token's signature, expiry and request binding.
func (m *DownloadTokenManager) Verify(tokenString string, requestID int64) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.TokenExpired()
		}
		return errors.TokenInvalid()
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != strconv.FormatInt(requestID, 10) {
		return errors.TokenInvalid()
	}
	return nil
}
