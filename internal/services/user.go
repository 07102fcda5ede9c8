package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/requestdata"
)

type UserService interface {
	GetMe(ctx context.Context) (*Profile, error)
}

// Profile is the dashboard view of the current actor.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	AvatarPath string    `json:"avatar_path,omitempty"`
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*Profile, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apperr.Unauthenticated("no actor in context")
	}
	user, err := us.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("actor no longer exists")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &Profile{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		AvatarPath: user.AvatarPath,
	}, nil
}
