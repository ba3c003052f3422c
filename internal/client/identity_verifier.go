package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"campus-chat-service/internal/config"
)

var (
	ErrMissingToken = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the verified identity extracted from a bearer credential.
type Claims struct {
	SubjectID     string `json:"uid"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}

// IdentityVerifier maps an opaque bearer credential to a verified subject.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// TokenVerifier asks the remote auth service first when one is configured and
// falls back to local HMAC JWT verification.
type TokenVerifier struct {
	serviceURL string
	secret     []byte
	issuer     string
	audience   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewTokenVerifier(cfg config.AuthConfig, logger *zap.Logger) *TokenVerifier {
	return &TokenVerifier{
		serviceURL: strings.TrimSuffix(cfg.ServiceURL, "/"),
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

func (v *TokenVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	if v.serviceURL != "" {
		claims, err := v.verifyWithAuthService(ctx, token)
		if err == nil {
			return claims, nil
		}
		v.logger.Debug("Auth service verification failed, falling back to local", zap.Error(err))
	}

	return v.verifyLocally(token)
}

func (v *TokenVerifier) verifyWithAuthService(ctx context.Context, token string) (*Claims, error) {
	reqBody, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.serviceURL+"/api/auth/validate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var result struct {
		Valid         *bool  `json:"valid"`
		UID           string `json:"uid"`
		UserID        string `json:"userId"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode auth service response: %w", err)
	}
	if result.Valid != nil && !*result.Valid {
		return nil, ErrInvalidToken
	}

	subject := result.UID
	if subject == "" {
		subject = result.UserID
	}
	if subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SubjectID:     subject,
		Email:         result.Email,
		Name:          result.Name,
		Picture:       result.Picture,
		EmailVerified: result.EmailVerified,
	}, nil
}

func (v *TokenVerifier) verifyLocally(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	var subject string
	for _, key := range []string{"sub", "uid", "user_id"} {
		if val, ok := mapClaims[key].(string); ok && val != "" {
			subject = val
			break
		}
	}
	if subject == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{SubjectID: subject}
	claims.Email, _ = mapClaims["email"].(string)
	claims.Name, _ = mapClaims["name"].(string)
	claims.Picture, _ = mapClaims["picture"].(string)
	claims.EmailVerified, _ = mapClaims["email_verified"].(bool)
	return claims, nil
}
