package database

import (
	"context"
	"time"

	"concierge/config"
	"concierge/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoClient backs the tenant catalog repositories.
var MongoClient *mongo.Client

// InitDB connects and pings Mongo, fatally on failure. The catalog is
// required at startup; a turn without it degrades to request-supplied
// tenant context only.
func InitDB() {
	logger := utils.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.MongoURI))
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("mongo ping failed", zap.Error(err))
	}
	MongoClient = client
	logger.Info("connected to MongoDB")
}
