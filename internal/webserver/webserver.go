package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/cafeorder/config"
	"github.com/talkincode/cafeorder/internal/filestore"
	"github.com/talkincode/cafeorder/internal/order"
)

var server *WebServer

// WebServer wraps the echo instance together with the collaborators the
// handler packages pull out of it.
type WebServer struct {
	root   *echo.Echo
	cfg    *config.AppConfig
	db     *gorm.DB
	svc    *order.Service
	fstore *filestore.FileStore
	public *echo.Group
	api    *echo.Group
}

// Init builds the global web server instance.
func Init(cfg *config.AppConfig, db *gorm.DB, svc *order.Service, fstore *filestore.FileStore) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &JsoniterSerializer{}
	e.Validator = &payloadValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.HTTPErrorHandler = errorHandler

	server = &WebServer{root: e, cfg: cfg, db: db, svc: svc, fstore: fstore}

	// /api/auth/login and /api/auth/register stay open; everything else
	// under /api requires a valid, non-blacklisted bearer token.
	server.public = e.Group("/api/auth")
	server.api = e.Group("/api", server.jwtMiddleware())

	e.Static("/uploads", fstore.Dir())
	return server
}

// Listen starts serving and blocks.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.cfg.Web.Host, server.cfg.Web.Port)
	zap.L().Info("starting web server", zap.String("listen", addr))
	return server.root.Start(addr)
}

// Instance returns the global server, nil before Init.
func Instance() *WebServer {
	return server
}

func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// PubPOST registers an unauthenticated route under /api/auth.
func PubPOST(path string, h echo.HandlerFunc) {
	server.public.POST(path, h)
}

func PubDELETE(path string, h echo.HandlerFunc) {
	server.public.DELETE(path, h)
}

// ApiGET registers an authenticated route under /api.
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// AuthDELETE registers an authenticated route under /api/auth (logout needs
// the jwt middleware even though it lives on the auth prefix).
func AuthDELETE(path string, h echo.HandlerFunc) {
	server.api.DELETE("/auth"+path, h)
}

// GetDB returns the shared database handle for handlers.
func GetDB(c echo.Context) *gorm.DB {
	return server.db
}

// GetOrderService returns the order transaction core.
func GetOrderService(c echo.Context) *order.Service {
	return server.svc
}

// GetFileStore returns the product image store.
func GetFileStore(c echo.Context) *filestore.FileStore {
	return server.fstore
}

// GetConfig returns the application config.
func GetConfig(c echo.Context) *config.AppConfig {
	return server.cfg
}

// JsoniterSerializer plugs json-iterator into echo's request/response codec.
type JsoniterSerializer struct{}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (JsoniterSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JsoniterSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			"Malformed JSON request: "+err.Error())
	}
	return nil
}

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)))
			return err
		}
	}
}

// errorHandler converts stray errors into the response envelope.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := "An unexpected error occurred"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		message = fmt.Sprintf("%v", he.Message)
	} else {
		zap.L().Error("unhandled error",
			zap.String("path", c.Request().URL.Path), zap.Error(err))
	}
	_ = Fail(c, status, message)
}
