package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/service"
)

func (s *Server) register(c echo.Context) error {
	var dto RegisterDTO
	if err := c.Bind(&dto); err != nil {
		return apperr.Validationf("invalid request body")
	}

	user, token, err := s.users.Register(c.Request().Context(), service.RegisterInput{
		Name:     dto.Name,
		Email:    dto.Email,
		Password: dto.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}

func (s *Server) login(c echo.Context) error {
	var dto LoginDTO
	if err := c.Bind(&dto); err != nil {
		return apperr.Validationf("invalid request body")
	}

	user, token, err := s.users.Login(c.Request().Context(), dto.Email, dto.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}

func (s *Server) listUsers(c echo.Context) error {
	users, err := s.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) createUser(c echo.Context) error {
	var dto CreateUserDTO
	if err := c.Bind(&dto); err != nil {
		return apperr.Validationf("invalid request body")
	}

	user, err := s.users.CreateByAdmin(c.Request().Context(), service.RegisterInput{
		Name:     dto.Name,
		Email:    dto.Email,
		Password: dto.Password,
		Role:     dto.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) getUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := s.users.Get(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) updateUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var dto UpdateUserDTO
	if err := c.Bind(&dto); err != nil {
		return apperr.Validationf("invalid request body")
	}

	user, err := s.users.Update(c.Request().Context(), auth.CurrentUser(c), id, service.UserUpdate{
		Name:           dto.Name,
		Email:          dto.Email,
		Password:       dto.Password,
		Role:           dto.Role,
		TelegramChatID: dto.TelegramChatID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

func paramID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("invalid id %q", raw)
	}
	return uint(id), nil
}
