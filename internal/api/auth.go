package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/cafeorder/internal/domain"
	"github.com/talkincode/cafeorder/internal/webserver"
	"github.com/talkincode/cafeorder/pkg/common"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/login", login)
	webserver.PubPOST("/register", register)
	webserver.AuthDELETE("/logout", logout)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse login request")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Username and password are required")
	}

	var user domain.SysUser
	err := GetDB(c).Where("username = ?", payload.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !common.CheckPassword(user.Password, payload.Password)) {
		zap.L().Warn("login failed", zap.String("username", payload.Username))
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return failErr(c, err)
	}

	token, _, err := webserver.GenerateToken(webserver.GetConfig(c), user.Username, user.Role)
	if err != nil {
		return failErr(c, err)
	}

	GetDB(c).Model(&user).UpdateColumn("last_login", time.Now())
	zap.L().Info("login successful", zap.String("username", user.Username))
	return ok(c, loginResponse{Token: token}, "Login successful")
}

// register creates or re-keys a user account with a bcrypt hash. The first
// account becomes ADMIN, later ones plain USER.
func register(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse register request")
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Username and password are required")
	}

	hash, err := common.HashPassword(payload.Password)
	if err != nil {
		return failErr(c, err)
	}

	db := GetDB(c)
	var user domain.SysUser
	err = db.Where("username = ?", payload.Username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		role := common.RoleUser
		var count int64
		db.Model(&domain.SysUser{}).Count(&count)
		if count == 0 {
			role = common.RoleAdmin
		}
		user = domain.SysUser{
			ID:       common.UUIDint64(),
			Username: payload.Username,
			Password: hash,
			Role:     role,
		}
		if err := db.Create(&user).Error; err != nil {
			return failErr(c, err)
		}
		return ok(c, user, "User created successfully")
	case err != nil:
		return failErr(c, err)
	default:
		if err := db.Model(&user).UpdateColumn("password", hash).Error; err != nil {
			return failErr(c, err)
		}
		return ok(c, user, "User password updated successfully")
	}
}

// logout blacklists the presented token until its own expiry; the jwt
// middleware already guaranteed it is valid and not yet revoked.
func logout(c echo.Context) error {
	token := webserver.BearerToken(c)
	if token == "" {
		return fail(c, http.StatusUnauthorized, "Invalid or missing token")
	}
	claims := webserver.Identity(c)
	expiry := time.Now().Add(24 * time.Hour)
	if claims != nil && claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	if err := webserver.BlacklistToken(GetDB(c), token, expiry); err != nil {
		return failErr(c, err)
	}
	username := ""
	if claims != nil {
		username = claims.Username
	}
	zap.L().Info("logout successful", zap.String("username", username))
	return ok(c, nil, "Logout successful: Token invalidated")
}
