package httpapi

import (
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

// RegisterDTO for self-service registration.
type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginDTO for credential verification.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserDTO for admin-initiated account creation.
type CreateUserDTO struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// UpdateUserDTO carries optional user changes; absent fields stay as is.
type UpdateUserDTO struct {
	Name           *string     `json:"name"`
	Email          *string     `json:"email"`
	Password       *string     `json:"password"`
	Role           *model.Role `json:"role"`
	TelegramChatID *int64      `json:"telegramChatId"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	Token string     `json:"token"`
}

// TaskDTO is the JSON body for task creation and update. Multipart
// requests carry the same fields as form values.
type TaskDTO struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Status       *model.Status   `json:"status"`
	Priority     *model.Priority `json:"priority"`
	DueDate      *string         `json:"dueDate"`
	AssignedToID *uint           `json:"assignedToId"`
}

// parseDueDate accepts RFC 3339 or a bare date.
func parseDueDate(raw string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validationf("invalid due date %q", raw)
}
