package user_service

import (
	"context"
	"net/url"

	"github.com/xenn00/personnel-directory/internal/avatar"
	"github.com/xenn00/personnel-directory/internal/dtos/user_dto"
	"github.com/xenn00/personnel-directory/internal/entity"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
)

type UserServiceContract interface {
	ListUsers(ctx context.Context, q url.Values) (*user_dto.ListUsersResponse, *app_error.AppError)
	GetUser(ctx context.Context, rawID string) (*entity.User, *app_error.AppError)
	CreateUser(ctx context.Context, req user_dto.UserFormRequest, upload *avatar.Upload) (string, *app_error.AppError)
	UpdateUser(ctx context.Context, rawID string, req user_dto.UserFormRequest, upload *avatar.Upload) *app_error.AppError
	TerminateUser(ctx context.Context, rawID string) *app_error.AppError
}

// AvatarProcessor turns an upload into a stored avatar and returns its public path.
type AvatarProcessor interface {
	Process(ctx context.Context, upload avatar.Upload, targetID string) (string, error)
}
