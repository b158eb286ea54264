package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/dig"

	"github.com/nachoo07/sistemaInterno-sub000/core"
)

type (
	ServerDeps struct {
		dig.In

		Conf       *core.Config
		Logger     core.Logger
		ShareSvc   ShareService
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		app      *echo.Echo
		conf     *core.Config
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	srv := &Server{
		app:      echo.New(),
		conf:     deps.Conf,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(srv.shutdown, os.Interrupt, syscall.SIGTERM)

	app := srv.app
	app.HideBanner = true
	app.Debug = deps.Conf.Debug
	app.Server.ReadTimeout = deps.Conf.Server.ReadTimeout
	app.Server.WriteTimeout = deps.Conf.Server.WriteTimeout
	app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, srv.signalShutdown)

	app.Pre(middleware.RemoveTrailingSlash())
	if !deps.Conf.TestMode {
		app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(deps.Conf.Debug || deps.Conf.TestMode) {
		app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	app.GET("/", srv.home)

	v1 := app.Group("/v1")
	jwtConfig := newJWTConfig(deps.Conf)
	jwt := middleware.JWTWithConfig(jwtConfig)

	registerAuthAPI(v1, jwt, deps.Conf)
	registerShareAPI(v1, jwt, deps.ShareSvc, deps.Validate)

	return srv
}

// Start blocks until the server stops. Unexpected errors are sent to Errors().
func (srv *Server) Start() {
	if err := srv.app.Start(srv.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		srv.errors <- err
	}
}

func (srv *Server) Errors() <-chan error {
	return srv.errors
}

func (srv *Server) ShutdownSignal() <-chan os.Signal {
	return srv.shutdown
}

func (srv *Server) signalShutdown() {
	select {
	case srv.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.app.Shutdown(ctx)
}

func (srv *Server) Close() error {
	return srv.app.Close()
}

func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	srv.app.ServeHTTP(w, r)
}

func (srv *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+srv.conf.AppName+" API!")
}
