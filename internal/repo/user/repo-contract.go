package user_repo

import (
	"context"

	"github.com/xenn00/personnel-directory/internal/entity"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
	"github.com/xenn00/personnel-directory/internal/filter"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserRepoContract interface {
	FindUsers(ctx context.Context, criteria filter.Criteria, skip, limit int64) ([]*entity.User, *app_error.AppError)
	FindUserByID(ctx context.Context, id bson.ObjectID) (*entity.User, *app_error.AppError)
	InsertUser(ctx context.Context, user *entity.User) (bson.ObjectID, *app_error.AppError)
	UpdateUser(ctx context.Context, id bson.ObjectID, patch entity.UserPatch) *app_error.AppError
}
