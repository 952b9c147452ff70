package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/blog"
	"github.com/ifcet/aula/core/contact"
	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/library"
	"github.com/ifcet/aula/core/session"
	"github.com/ifcet/aula/core/student"
)

type (
	Deps struct {
		Logger     core.Logger
		Sessions   session.Backend
		Portal     *session.Portal
		StudentSvc *student.Service
		CourseSvc  *course.Service
		BlogSvc    *blog.Service
		Library    *library.Catalog
		ContactSvc *contact.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		addr     string
		deps     *Deps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

// NewServer builds the API server. A nil `shutdown` channel gets one listening
// for SIGINT and SIGTERM.
func NewServer(addr string, shutdown chan os.Signal, deps *Deps) Server {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	}
	if deps.Portal == nil {
		deps.Portal = session.NewPortal(deps.StudentSvc, deps.Logger)
	}

	s := &server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     core.Conf.Server.AllowedOrigins,
		AllowCredentials: true,
	}))
	if !core.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAulaAPI(v1, jwt, s.deps)
	registerBlogAPI(v1, s.deps.BlogSvc)
	registerLibraryAPI(v1, s.deps.Library)
	registerContactAPI(v1, s.deps.ContactSvc)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

// Start listens in the background. Listen errors are sent on Errors.
func (s *server) Start() {
	go func() {
		s.deps.Logger.Info("API listening on " + s.addr)
		if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
			s.errors <- err
		}
	}()
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bienvenido a la API del "+core.Conf.AppName+"!")
}
