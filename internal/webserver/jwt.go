package webserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/cafeorder/config"
	"github.com/talkincode/cafeorder/internal/domain"
	"github.com/talkincode/cafeorder/pkg/common"
)

// SessionClaims is the token payload: who the caller is and which role tag
// the handlers gate on.
type SessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed bearer token for username with the given role.
func GenerateToken(cfg *config.AppConfig, username, role string) (string, time.Time, error) {
	expire := time.Now().Add(time.Duration(cfg.Web.JwtExpire) * time.Hour)
	claims := SessionClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expire),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Web.Secret))
	return token, expire, err
}

// ParseToken verifies the signature and expiry of a bearer token.
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// jwtMiddleware validates bearer tokens and rejects blacklisted ones before
// any handler runs.
func (s *WebServer) jwtMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			var revoked int64
			if err := s.db.Model(&domain.TokenBlacklist{}).
				Where("token = ?", auth).Count(&revoked).Error; err != nil {
				zap.L().Error("token blacklist lookup failed", zap.Error(err))
				return nil, err
			}
			if revoked > 0 {
				return nil, errors.New("token is blacklisted")
			}
			return ParseToken(s.cfg.Web.Secret, auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return Fail(c, http.StatusUnauthorized,
				"Authentication required: Please provide a valid token")
		},
	})
}

// Identity returns the authenticated caller's claims, nil outside the
// protected routes.
func Identity(c echo.Context) *SessionClaims {
	claims, _ := c.Get("user").(*SessionClaims)
	return claims
}

// AdminOnly gates a route group to callers carrying the ADMIN role.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := Identity(c)
		if claims == nil || claims.Role != common.RoleAdmin {
			return Fail(c, http.StatusForbidden, "Insufficient permissions: ROLE_ADMIN required")
		}
		return next(c)
	}
}

// BlacklistToken revokes a bearer token until its own expiry.
func BlacklistToken(db *gorm.DB, token string, expiry time.Time) error {
	return db.Create(&domain.TokenBlacklist{Token: token, ExpiryDate: expiry}).Error
}
