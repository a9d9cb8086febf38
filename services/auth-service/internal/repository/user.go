package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related storage operations.
// Emails passed in are expected to be normalized already.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// SetPasswordResetToken stores token and expiresAt on the user with the given
	// email, replacing any outstanding token. Returns ErrNotFound for unknown emails.
	SetPasswordResetToken(ctx context.Context, email, token string, expiresAt time.Time) error

	// GetUserByResetToken returns the user holding token if it has not expired at now.
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)

	// ConsumePasswordResetToken atomically replaces the password hash and clears
	// the reset fields of the user holding token, provided it has not expired at
	// now. At most one caller can consume a given token; the rest get ErrNotFound.
	ConsumePasswordResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (*model.User, error)

	// ClearExpiredResetTokens unsets reset fields that expired before now.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	Ping(ctx context.Context) error
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates the users collection indexes and returns a
// MongoDB backed UserRepository.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reset_password_token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "reset_password_expires", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) SetPasswordResetToken(
	ctx context.Context,
	email, token string,
	expiresAt time.Time,
) error {
	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"reset_password_token":   token,
			"reset_password_expires": expiresAt,
			"updated_at":             time.Now(),
		}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *userMongoRepository) GetUserByResetToken(
	ctx context.Context,
	token string,
	now time.Time,
) (*model.User, error) {
	return r.findOne(ctx, liveResetTokenFilter(token, now))
}

func (r *userMongoRepository) ConsumePasswordResetToken(
	ctx context.Context,
	token string,
	now time.Time,
	passwordHash string,
) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		liveResetTokenFilter(token, now),
		consumeResetTokenUpdate(passwordHash, time.Now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	return decodeUser(result)
}

func (r *userMongoRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Collection(userCollection).UpdateMany(
		ctx,
		expiredResetTokenFilter(now),
		bson.M{"$unset": unsetResetFields()},
	)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *userMongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	return decodeUser(r.db.Collection(userCollection).FindOne(ctx, filter))
}

// liveResetTokenFilter matches the holder of token while it is unexpired at now.
func liveResetTokenFilter(token string, now time.Time) bson.M {
	return bson.M{
		"reset_password_token":   token,
		"reset_password_expires": bson.M{"$gt": now},
	}
}

// expiredResetTokenFilter matches users whose reset token expired at or before now.
func expiredResetTokenFilter(now time.Time) bson.M {
	return bson.M{"reset_password_expires": bson.M{"$lte": now}}
}

// consumeResetTokenUpdate sets the new hash and drops both reset fields together.
func consumeResetTokenUpdate(passwordHash string, updatedAt time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    updatedAt,
		},
		"$unset": unsetResetFields(),
	}
}

func unsetResetFields() bson.M {
	return bson.M{
		"reset_password_token":   "",
		"reset_password_expires": "",
	}
}

func decodeUser(result *mongo.SingleResult) (*model.User, error) {
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
