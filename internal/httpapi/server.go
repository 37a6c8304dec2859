// Package httpapi exposes the REST surface: users, authentication and
// task CRUD with file attachments.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/service"
)

// Server wires the echo engine to the service layer.
type Server struct {
	echo       *echo.Echo
	users      *service.UserService
	tasks      *service.TaskService
	issuer     *auth.TokenIssuer
	userFinder auth.UserFinder
	uploadDir  string
	production bool
}

// Options carries everything the server needs beyond its services.
type Options struct {
	Issuer     *auth.TokenIssuer
	UserFinder auth.UserFinder
	UploadDir  string
	Production bool
}

func NewServer(users *service.UserService, tasks *service.TaskService, opts Options) *Server {
	s := &Server{
		echo:       echo.New(),
		users:      users,
		tasks:      tasks,
		issuer:     opts.Issuer,
		userFinder: opts.UserFinder,
		uploadDir:  opts.UploadDir,
		production: opts.Production,
	}

	s.echo.HideBanner = true
	s.echo.HTTPErrorHandler = s.handleError
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "API is running"})
	})

	// Stored files are also served statically. Document streaming below
	// is the access-checked path.
	s.echo.Static("/uploads", s.uploadDir)

	api := s.echo.Group("/api")

	users := api.Group("/users")
	users.POST("/register", s.register)
	users.POST("/login", s.login)

	authed := auth.Authenticate(s.issuer, s.userFinder)

	users.GET("", s.listUsers, authed, auth.RequireAdmin)
	users.POST("", s.createUser, authed, auth.RequireAdmin)
	users.GET("/:id", s.getUser, authed)
	users.PUT("/:id", s.updateUser, authed)
	users.DELETE("/:id", s.deleteUser, authed, auth.RequireAdmin)

	tasks := api.Group("/tasks", authed)
	tasks.GET("", s.listTasks)
	tasks.POST("", s.createTask)
	tasks.GET("/:id", s.getTask)
	tasks.PUT("/:id", s.updateTask)
	tasks.DELETE("/:id", s.deleteTask)
	tasks.GET("/:id/documents/:docId", s.getTaskDocument)
}

// Start runs the server until shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Echo exposes the engine for shutdown and tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// handleError maps the service error taxonomy onto status codes with a
// single JSON shape.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrUpload):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		c.Logger().Error(err)
		if s.production {
			message = "internal server error"
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"message": message})
}
