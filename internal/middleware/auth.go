package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "finhub/internal/errors"
	"finhub/internal/models"
)

const (
	// RoleAdmin is the role claim carried by admin panel tokens.
	RoleAdmin = "admin"

	adminTokenExpiry = 8 * time.Hour
	tokenIssuer      = "finhub-api"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID        = "userID"
	ContextEmail         = "email"
	ContextAdminUsername = "adminUsername"
)

// JWTClaims represents the claims in the JWT. User tokens carry ID and Email;
// admin tokens carry Username and Role.
type JWTClaims struct {
	UserID   uint   `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with one secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager. ttl applies to user tokens.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// GenerateUserToken issues an access token for a registered user.
func (m *TokenManager) GenerateUserToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}
	return m.sign(claims)
}

// GenerateAdminToken issues an admin panel token valid for eight hours.
func (m *TokenManager) GenerateAdminToken(username string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   username,
		},
	}
	return m.sign(claims)
}

func (m *TokenManager) sign(claims *JWTClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the signature and expiry of tokenString and returns its claims.
func (m *TokenManager) Parse(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// bearerClaims extracts and verifies the bearer token of the request.
func (m *TokenManager) bearerClaims(c *gin.Context) (*JWTClaims, *apperrors.AppError) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format")
	}

	claims, err := m.Parse(parts[1])
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{
		"error": gin.H{"code": err.Code, "message": err.Message},
	})
}

// AuthMiddleware verifies the user token and sets the user in the context.
func AuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, appErr := tokens.bearerClaims(c)
		if appErr != nil {
			abortWithError(c, appErr)
			return
		}

		// Admin tokens carry no user id and cannot act on user data.
		if claims.UserID == 0 {
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}
