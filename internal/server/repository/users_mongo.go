package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/models"
)

// MongoUsersRepository хранит пользователей в коллекции документного хранилища.
// Идентификатор — ObjectID, его назначает хранилище.
type MongoUsersRepository struct {
	coll *mongo.Collection
}

func NewMongoUsersRepository(coll *mongo.Collection) *MongoUsersRepository {
	return &MongoUsersRepository{coll: coll}
}

// userDocument — вид пользователя в коллекции.
type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
}

func (d userDocument) toModel() models.User {
	u := models.User{Name: d.Name, Email: d.Email, Password: d.Password}
	if !d.ID.IsZero() {
		u.ID = d.ID.Hex()
	}
	return u
}

func (r *MongoUsersRepository) Create(ctx context.Context, name, email, password string) (models.InsertResult, error) {
	res, err := r.coll.InsertOne(ctx, userDocument{Name: name, Email: email, Password: password})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.InsertResult{}, serr.ErrAlreadyExists
		}
		return models.InsertResult{}, serr.Store("insert user", err)
	}

	out := models.InsertResult{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.InsertedID = oid.Hex()
	}
	return out, nil
}

// GetByID не ходит в хранилище, если id не ObjectID.
func (r *MongoUsersRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, serr.InvalidIdentifier(id, err)
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}}, "get user by id")
}

func (r *MongoUsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, "get user by email")
}

func (r *MongoUsersRepository) Update(ctx context.Context, id, name, email, password string) (models.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.UpdateResult{}, serr.InvalidIdentifier(id, err)
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: name},
			{Key: "email", Value: email},
			{Key: "password", Value: password},
		}}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.UpdateResult{}, serr.ErrAlreadyExists
		}
		return models.UpdateResult{}, serr.Store("update user", err)
	}

	return models.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (r *MongoUsersRepository) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.DeleteResult{}, serr.InvalidIdentifier(id, err)
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return models.DeleteResult{}, serr.Store("delete user", err)
	}
	return models.DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// List читает всю коллекцию целиком до возврата.
func (r *MongoUsersRepository) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, serr.Store("list users", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, serr.Store("list users", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (r *MongoUsersRepository) findOne(ctx context.Context, filter bson.D, op string) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, serr.Store(op, err)
	}
	u := doc.toModel()
	return &u, nil
}
