package service

import (
	"context"
	"strings"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/model"
	"taskhub/internal/repository"
)

// RegisterInput is the data required to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role // honored only on admin-initiated creation
}

// UserUpdate carries optional field changes; nil means leave unchanged.
type UserUpdate struct {
	Name           *string
	Email          *string
	Password       *string
	Role           *model.Role
	TelegramChatID *int64
}

// UserService wraps account-related business logic.
type UserService struct {
	users  *repository.UserRepository
	issuer *auth.TokenIssuer
	authz  auth.Authorizer
}

func NewUserService(users *repository.UserRepository, issuer *auth.TokenIssuer) *UserService {
	return &UserService{users: users, issuer: issuer}
}

// Register creates a self-service account. The role is always "user";
// elevation requires an existing admin.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	user, err := s.createUser(ctx, in, model.RoleUser)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issuer.Issue(user, time.Now())
	if err != nil {
		return nil, "", apperr.E("register", err)
	}
	return user, token, nil
}

// CreateByAdmin creates an account with an explicit role.
func (s *UserService) CreateByAdmin(ctx context.Context, in RegisterInput) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperr.Validationf("invalid role %q", in.Role)
	}
	return s.createUser(ctx, in, role)
}

func (s *UserService) createUser(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validationf("name, email and password are required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, apperr.Validationf("invalid email %q", in.Email)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.E("create user", err)
	}

	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and mints a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apperr.Validationf("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil || !auth.CheckPassword(user.Password, password) {
		return nil, "", apperr.E("login", apperr.ErrUnauthorized)
	}

	token, err := s.issuer.Issue(user, time.Now())
	if err != nil {
		return nil, "", apperr.E("login", err)
	}
	return user, token, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Get fetches a user record, allowed for self or admin.
func (s *UserService) Get(ctx context.Context, caller *model.User, id uint) (*model.User, error) {
	if !s.authz.CanTouchUser(caller, id) {
		return nil, apperr.Forbiddenf("cannot view user %d", id)
	}
	return s.users.FindByID(ctx, id)
}

// Update applies changes to a user record. The role field is silently
// dropped unless the caller is an admin, so a self-update can never
// escalate privileges.
func (s *UserService) Update(ctx context.Context, caller *model.User, id uint, in UserUpdate) (*model.User, error) {
	if !s.authz.CanTouchUser(caller, id) {
		return nil, apperr.Forbiddenf("cannot update user %d", id)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !strings.Contains(email, "@") {
			return nil, apperr.Validationf("invalid email %q", *in.Email)
		}
		updates["email"] = email
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.E("update user", err)
		}
		updates["password"] = hashed
	}
	if in.TelegramChatID != nil {
		updates["telegram_chat_id"] = *in.TelegramChatID
	}
	if in.Role != nil && caller.IsAdmin() {
		if !in.Role.Valid() {
			return nil, apperr.Validationf("invalid role %q", *in.Role)
		}
		updates["role"] = *in.Role
	}

	return s.users.Update(ctx, id, updates)
}

// Delete removes a user record. Admin-only, enforced at the route.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}
