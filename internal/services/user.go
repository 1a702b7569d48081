package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shutdown-tracker/internal/access"
	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/store"
	"shutdown-tracker/internal/validation"
)

// UserService is the admin-only user management surface.
type UserService struct {
	users store.UserStore
	logr  *zap.Logger
}

func NewUserService(users store.UserStore, logr *zap.Logger) *UserService {
	return &UserService{users: users, logr: logr}
}

func (s *UserService) List(ctx context.Context, caller *models.User) ([]*UserInfo, error) {
	if err := access.RequireManageUsers("list users", caller); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*UserInfo, 0, len(users))
	for i := range users {
		out = append(out, NewUserInfo(&users[i]))
	}
	return out, nil
}

func (s *UserService) UpdateAccessLevel(ctx context.Context, id uuid.UUID, req models.UpdateAccessLevelRequest, caller *models.User) (*UserInfo, error) {
	const op = "update access level"
	if err := access.RequireManageUsers(op, caller); err != nil {
		return nil, err
	}
	if err := validation.Struct(op, req); err != nil {
		return nil, err
	}
	if caller.ID == id {
		return nil, errs.ValidationWrap(op, errs.ErrSelfAccessChange)
	}

	u, err := s.users.UpdateAccessLevel(ctx, id, req.AccessLevel)
	if err != nil {
		return nil, err
	}
	s.logr.Info("access level changed",
		zap.String("user_id", id.String()),
		zap.String("access_level", string(req.AccessLevel)),
		zap.String("by", caller.Email))
	return NewUserInfo(u), nil
}
