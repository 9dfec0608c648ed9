package state

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/personnel-directory/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type AppState struct {
	Config *config.AppConfig
	Mongo  *mongo.Client
	Redis  *redis.Client
}

func InitAppState(ctx context.Context, conf *config.AppConfig) (*AppState, error) {
	mongoClient, err := InitMongo(ctx, conf.DATABASE.Mongo.Url)
	if err != nil {
		return nil, err
	}

	rc := conf.DATABASE.Redis
	rdb, err := InitRedis(ctx, rc.Addr, rc.Password, rc.DB)
	if err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}

	return &AppState{
		Config: conf,
		Mongo:  mongoClient,
		Redis:  rdb,
	}, nil
}

// Users is the collection holding personnel records.
func (a *AppState) Users() *mongo.Collection {
	m := a.Config.DATABASE.Mongo
	return a.Mongo.Database(m.Database).Collection(m.Collection)
}

func (a *AppState) Close() {
	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Closing MongoDB client...")
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB client")
		}
	}

	if a.Redis != nil {
		log.Info().Msg("Closing Redis client...")
		if err := a.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
