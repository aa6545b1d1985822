package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

type CustomerRepository struct {
	collection *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{collection: db.Collection("customers")}
}

// FindByID looks up a customer document by its hex object id.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var customer models.Customer
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Exists reports whether a customer document with the given id is present.
// A malformed id is an unknown principal, not a store failure.
func (r *CustomerRepository) Exists(ctx context.Context, id string) (bool, error) {
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
