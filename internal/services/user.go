package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/videolabel-backend/internal/data/repos/users"
	types "github.com/yungbote/videolabel-backend/internal/domain"
	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/logger"
)

type UserInput struct {
	UserIDStr string
	Email     string
	Password  string
	UserType  string
	Archived  bool
}

type UserService interface {
	ValidateNew(in UserInput) error
	Create(dbc dbctx.Context, in UserInput) (*types.User, error)
	Diff(current *types.User, in UserInput) (map[string]interface{}, error)
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type userService struct {
	repo users.UserRepo
	log  *logger.Logger
}

func NewUserService(repo users.UserRepo, baseLog *logger.Logger) UserService {
	return &userService{repo: repo, log: baseLog.With("service", "UserService")}
}

func validUserType(t string) bool {
	switch t {
	case types.UserTypeHuman, types.UserTypeModel, types.UserTypeAdmin:
		return true
	default:
		return false
	}
}

func (s *userService) ValidateNew(in UserInput) error {
	if strings.TrimSpace(in.UserIDStr) == "" {
		return fmt.Errorf("user_id is required")
	}
	if !validUserType(in.UserType) {
		return fmt.Errorf("unknown user type %q", in.UserType)
	}
	if in.UserType != types.UserTypeModel && strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("email is required for %s users", in.UserType)
	}
	return nil
}

func (s *userService) Create(dbc dbctx.Context, in UserInput) (*types.User, error) {
	if err := s.ValidateNew(in); err != nil {
		return nil, err
	}
	u := &types.User{
		ID:         uuid.New(),
		UserIDStr:  in.UserIDStr,
		UserType:   in.UserType,
		IsArchived: in.Archived,
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		u.Email = &email
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if err := s.repo.Create(dbc, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Diff(current *types.User, in UserInput) (map[string]interface{}, error) {
	if in.UserType != "" && !validUserType(in.UserType) {
		return nil, fmt.Errorf("unknown user type %q", in.UserType)
	}
	updates := map[string]interface{}{}

	email := strings.TrimSpace(in.Email)
	currentEmail := ""
	if current.Email != nil {
		currentEmail = *current.Email
	}
	if email != "" && email != currentEmail {
		updates["email"] = email
	}
	if in.UserType != "" && in.UserType != current.UserType {
		updates["user_type"] = in.UserType
	}
	if in.Archived != current.IsArchived {
		updates["is_archived"] = in.Archived
	}
	if in.Password != "" {
		if bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(in.Password)) != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			updates["password_hash"] = string(hash)
		}
	}
	return updates, nil
}

func (s *userService) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return s.repo.UpdateFields(dbc, id, updates)
}
