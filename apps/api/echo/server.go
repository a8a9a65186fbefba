// Package echoapi exposes the application over HTTP.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/htpham/tutorhub/core"
	"github.com/htpham/tutorhub/core/grade"
	"github.com/htpham/tutorhub/core/notification"
	"github.com/htpham/tutorhub/core/projection"
	"github.com/htpham/tutorhub/core/schedule"
	"github.com/htpham/tutorhub/core/school"
	"github.com/htpham/tutorhub/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		UserSvc         *user.Service
		SchoolSvc       *school.Service
		ScheduleSvc     *schedule.Service
		GradeSvc        *grade.Service
		NotificationSvc *notification.Service
		Projection      *projection.Store
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		auth     *jwtAuth
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		auth:     newJWTAuth(opts.Conf),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := s.auth.middleware()

	registerUserAPI(v1, jwt, s.auth, s.opts.UserSvc)
	registerSchoolAPI(v1, jwt, s.auth, s.opts.SchoolSvc, s.opts.Projection)
	registerScheduleAPI(v1, jwt, s.auth, s.opts.ScheduleSvc, s.opts.Projection)
	registerGradeAPI(v1, jwt, s.auth, s.opts.GradeSvc, s.opts.SchoolSvc, s.opts.Projection)
	registerNotificationAPI(v1, jwt, s.opts.NotificationSvc)
	registerProjectionAPI(v1, jwt, s.opts.Projection)
}

// signalShutdown triggers a graceful shutdown, for use on unrecoverable errors.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- s.app.Start(s.opts.Addr)
	}()

	select {
	case err := <-serverErrors:
		s.opts.Logger.Fatal("server error", err)
	case sig := <-s.shutdown:
		s.opts.Logger.Info("starting shutdown", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			_ = s.app.Close()
			s.opts.Logger.Fatal("could not stop server gracefully", err)
		}
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to TutorHub API!")
}
