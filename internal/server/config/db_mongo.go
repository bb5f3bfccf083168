package config

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
)

// EmailIndexName — имя уникального индекса по email.
const EmailIndexName = "email_unique"

// ConnectMongo подключается к документному хранилищу и возвращает клиента
// и коллекцию пользователей.
//
// Клиент mongo сам держит пул соединений и безопасен для конкурентного
// использования. Отключить клиента должен вызывающий.
func ConnectMongo(ctx context.Context, cfg StoreConfig, log *logger.Logger) (*mongo.Client, *mongo.Collection, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Error("error to connect mongo", zap.Error(err))
		return nil, nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		log.Error("error check mongo connection", zap.Error(err))
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)

	if err := EnsureUserIndexes(connectCtx, coll); err != nil {
		log.Error("error creating user indexes", zap.Error(err))
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	log.Info("initializing database connection...",
		zap.String("database", cfg.Mongo.Database),
		zap.String("collection", cfg.Mongo.Collection),
	)
	return client, coll, nil
}

// EnsureUserIndexes создаёт уникальный индекс по email.
// Вместе с проверкой в сервисе он закрывает гонку двух одновременных регистраций.
func EnsureUserIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(EmailIndexName),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}
