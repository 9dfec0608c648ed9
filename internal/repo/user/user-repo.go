package user_repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/personnel-directory/internal/entity"
	app_error "github.com/xenn00/personnel-directory/internal/errors"
	"github.com/xenn00/personnel-directory/internal/filter"
	"github.com/xenn00/personnel-directory/internal/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserRepo struct {
	Users    *mongo.Collection
	Redis    *redis.Client
	CacheTTL time.Duration
}

// NewUserRepo builds the Mongo-backed repository. rdb may be nil, which
// turns off the lookup cache.
func NewUserRepo(users *mongo.Collection, rdb *redis.Client, cacheTTL time.Duration) UserRepoContract {
	return &UserRepo{
		Users:    users,
		Redis:    rdb,
		CacheTTL: cacheTTL,
	}
}

// FindUsers returns at most limit records after skip, in store order.
func (r *UserRepo) FindUsers(ctx context.Context, criteria filter.Criteria, skip, limit int64) ([]*entity.User, *app_error.AppError) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)

	cur, err := r.Users.Find(ctx, criteria.BSON(), opts)
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch users: %v", err), app_error.FieldMongo)
	}
	defer cur.Close(ctx)

	users := []*entity.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to decode users: %v", err), app_error.FieldMongo)
	}

	return users, nil
}

// FindUserByID is cache-first. The cache is only filled if no write landed
// on the record while Mongo was being read.
func (r *UserRepo) FindUserByID(ctx context.Context, id bson.ObjectID) (*entity.User, *app_error.AppError) {
	key, genKey := utils.UserCacheKey(id.Hex()), utils.UserCacheGenKey(id.Hex())

	cached, cacheErr := utils.GetCacheData[entity.User](ctx, r.Redis, key)
	if cacheErr != nil {
		log.Warn().Err(cacheErr).Str("key", key).Msg("user cache read failed, falling back to mongo")
	} else if cached != nil {
		return cached, nil
	}

	gen, genErr := utils.CacheGeneration(ctx, r.Redis, genKey)

	var user entity.User
	if err := r.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("user not found")
		}
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch user: %v", err), app_error.FieldMongo)
	}

	if genErr != nil {
		log.Warn().Err(genErr).Str("key", genKey).Msg("failed to read user cache generation, not caching")
		return &user, nil
	}
	if _, err := utils.SetCacheDataIfGeneration(ctx, r.Redis, key, genKey, gen, &user, r.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache user")
	}

	return &user, nil
}

func (r *UserRepo) InsertUser(ctx context.Context, user *entity.User) (bson.ObjectID, *app_error.AppError) {
	res, err := r.Users.InsertOne(ctx, user)
	if err != nil {
		return bson.NilObjectID, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to create user: %v", err), app_error.FieldMongo)
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return bson.NilObjectID, app_error.NewAppError(http.StatusInternalServerError, "unexpected inserted id type", app_error.FieldMongo)
	}
	user.ID = id

	return id, nil
}

// UpdateUser applies patch as a single $set on one document.
func (r *UserRepo) UpdateUser(ctx context.Context, id bson.ObjectID, patch entity.UserPatch) *app_error.AppError {
	if patch.Empty() {
		return nil
	}

	res, err := r.Users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": patch.SetDoc()})
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to update user: %v", err), app_error.FieldMongo)
	}

	// bump first so in-flight lookups that read the old document skip caching it
	if err := utils.BumpCacheGeneration(ctx, r.Redis, utils.UserCacheGenKey(id.Hex())); err != nil {
		log.Warn().Err(err).Str("user_id", id.Hex()).Msg("failed to bump user cache generation")
	}
	if err := utils.DeleteCacheData(ctx, r.Redis, utils.UserCacheKey(id.Hex())); err != nil {
		log.Warn().Err(err).Str("user_id", id.Hex()).Msg("failed to invalidate user cache")
	}

	if res.MatchedCount == 0 {
		return app_error.NotFound("user not found")
	}

	return nil
}
