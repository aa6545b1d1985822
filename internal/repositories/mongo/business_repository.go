package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

type BusinessRepository struct {
	collection *mongo.Collection
}

func NewBusinessRepository(db *mongo.Database) *BusinessRepository {
	return &BusinessRepository{collection: db.Collection("businesses")}
}

func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*models.Business, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var business models.Business
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&business); err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *BusinessRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
