package httpapi

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/model"
	"taskhub/internal/service"
)

// documentsField is the multipart field name carrying task attachments.
const documentsField = "documents"

func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.tasks.List(c.Request().Context(), auth.CurrentUser(c), c.QueryParams())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c echo.Context) error {
	dto, files, err := bindTaskRequest(c)
	if err != nil {
		return err
	}

	input := service.TaskInput{
		AssignedToID: dto.AssignedToID,
	}
	if dto.Title != nil {
		input.Title = *dto.Title
	}
	if dto.Description != nil {
		input.Description = *dto.Description
	}
	if dto.Status != nil {
		input.Status = *dto.Status
	}
	if dto.Priority != nil {
		input.Priority = *dto.Priority
	}
	if dto.DueDate != nil && *dto.DueDate != "" {
		due, err := parseDueDate(*dto.DueDate)
		if err != nil {
			return err
		}
		input.DueDate = due
	}

	task, err := s.tasks.Create(c.Request().Context(), auth.CurrentUser(c), input, files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	task, err := s.tasks.Get(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	dto, files, err := bindTaskRequest(c)
	if err != nil {
		return err
	}

	update := service.TaskUpdate{
		Title:        dto.Title,
		Description:  dto.Description,
		Status:       dto.Status,
		Priority:     dto.Priority,
		AssignedToID: dto.AssignedToID,
	}
	if dto.DueDate != nil && *dto.DueDate != "" {
		due, err := parseDueDate(*dto.DueDate)
		if err != nil {
			return err
		}
		update.DueDate = due
	}

	task, err := s.tasks.Update(c.Request().Context(), auth.CurrentUser(c), id, update, files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(c.Request().Context(), auth.CurrentUser(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

func (s *Server) getTaskDocument(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	doc, path, err := s.tasks.Document(c.Request().Context(), auth.CurrentUser(c), id, c.Param("docId"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, doc.ContentType)
	return c.Attachment(path, doc.OriginalName)
}

// bindTaskRequest reads a task payload from either a JSON body or a
// multipart form with an optional documents field.
func bindTaskRequest(c echo.Context) (TaskDTO, []*multipart.FileHeader, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		var dto TaskDTO
		if err := c.Bind(&dto); err != nil {
			return TaskDTO{}, nil, apperr.Validationf("invalid request body")
		}
		return dto, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return TaskDTO{}, nil, apperr.Validationf("invalid multipart form")
	}

	dto := TaskDTO{}
	if v, ok := formValue(form, "title"); ok {
		dto.Title = &v
	}
	if v, ok := formValue(form, "description"); ok {
		dto.Description = &v
	}
	if v, ok := formValue(form, "status"); ok {
		status := model.Status(v)
		dto.Status = &status
	}
	if v, ok := formValue(form, "priority"); ok {
		priority := model.Priority(v)
		dto.Priority = &priority
	}
	if v, ok := formValue(form, "dueDate"); ok {
		dto.DueDate = &v
	}
	if v, ok := formValue(form, "assignedToId"); ok {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return TaskDTO{}, nil, apperr.Validationf("invalid assignee id %q", v)
		}
		uid := uint(id)
		dto.AssignedToID = &uid
	}

	return dto, form.File[documentsField], nil
}

func formValue(form *multipart.Form, name string) (string, bool) {
	values, ok := form.Value[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
