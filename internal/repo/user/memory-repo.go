package user_repo

import (
	"context"
	"net/http"
	"sync"

	"github.com/xenn00/personnel-directory/internal/entity"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
	"github.com/xenn00/personnel-directory/internal/filter"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryRepo is an in-process UserRepoContract that keeps insertion order
// and evaluates criteria with filter.Criteria.Matches.
type MemoryRepo struct {
	mu    sync.Mutex
	users []*entity.User

	// LastSkip and LastLimit record the window of the latest FindUsers call.
	LastSkip   int64
	LastLimit  int64
	FailWrites bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) FindUsers(_ context.Context, criteria filter.Criteria, skip, limit int64) ([]*entity.User, *app_error.AppError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastSkip, m.LastLimit = skip, limit

	matched := make([]*entity.User, 0)
	for _, u := range m.users {
		if criteria.Matches(u) {
			cp := *u
			matched = append(matched, &cp)
		}
	}
	if skip < 0 || skip >= int64(len(matched)) {
		return []*entity.User{}, nil
	}
	matched = matched[skip:]
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryRepo) FindUserByID(_ context.Context, id bson.ObjectID) (*entity.User, *app_error.AppError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.lookup(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, app_error.NotFound("user not found")
}

func (m *MemoryRepo) InsertUser(_ context.Context, user *entity.User) (bson.ObjectID, *app_error.AppError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return bson.NilObjectID, app_error.NewAppError(http.StatusInternalServerError, "failed to create user", app_error.FieldMongo)
	}
	user.ID = bson.NewObjectID()
	cp := *user
	m.users = append(m.users, &cp)
	return user.ID, nil
}

func (m *MemoryRepo) UpdateUser(_ context.Context, id bson.ObjectID, patch entity.UserPatch) *app_error.AppError {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return app_error.NewAppError(http.StatusInternalServerError, "failed to update user", app_error.FieldMongo)
	}
	u := m.lookup(id)
	if u == nil {
		return app_error.NotFound("user not found")
	}
	patch.Apply(u)
	return nil
}

func (m *MemoryRepo) lookup(id bson.ObjectID) *entity.User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}
