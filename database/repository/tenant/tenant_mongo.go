package tenant

import (
	"context"
	"fmt"
	"time"

	"concierge/config"
	"concierge/database"
	"concierge/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTenantRepo implements Repository over the "tenants" collection.
type MongoTenantRepo struct {
	coll *mongo.Collection
}

func NewMongoTenantRepo() *MongoTenantRepo {
	db := database.MongoClient.Database(config.AppConfig.MongoDB)
	return &MongoTenantRepo{coll: db.Collection("tenants")}
}

func (r *MongoTenantRepo) GetByID(ctx context.Context, tenantID string) (*models.TenantRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.TenantRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenant %s: %w", tenantID, err)
	}
	return &rec, nil
}

func (r *MongoTenantRepo) Upsert(ctx context.Context, rec *models.TenantRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rec.TenantID}, rec, opts); err != nil {
		return fmt.Errorf("failed to upsert tenant %s: %w", rec.TenantID, err)
	}
	return nil
}

func (r *MongoTenantRepo) Delete(ctx context.Context, tenantID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": tenantID}); err != nil {
		return fmt.Errorf("failed to delete tenant %s: %w", tenantID, err)
	}
	return nil
}
