package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wfa22/PrivacyGuard/internal/core/domain"
)

const sessionsCollection = "sessions"

// SessionRepository implements ports.SessionRepository using MongoDB.
//
// Rotation safety rests on RevokeActive: a single FindOneAndUpdate with a
// revoked:false filter acts as a compare-and-set, so concurrent refreshes of
// the same token serialize in the database with exactly one winner.
type SessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionsCollection)}
}

type mongoSession struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	AccountID  string             `bson:"account_id"`
	TokenHash  string             `bson:"token_hash"`
	DeviceInfo string             `bson:"device_info"`
	CreatedAt  time.Time          `bson:"created_at"`
	ExpiresAt  time.Time          `bson:"expires_at"`
	Revoked    bool               `bson:"revoked"`
}

func (m *mongoSession) toDomain() *domain.Session {
	return &domain.Session{
		ID:         m.ID.Hex(),
		AccountID:  m.AccountID,
		TokenHash:  m.TokenHash,
		DeviceInfo: m.DeviceInfo,
		CreatedAt:  m.CreatedAt.UTC(),
		ExpiresAt:  m.ExpiresAt.UTC(),
		Revoked:    m.Revoked,
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	doc := mongoSession{
		AccountID:  session.AccountID,
		TokenHash:  session.TokenHash,
		DeviceInfo: session.DeviceInfo,
		CreatedAt:  session.CreatedAt,
		ExpiresAt:  session.ExpiresAt,
		Revoked:    false,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	created := *session
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *SessionRepository) FindByHash(ctx context.Context, hash string) (*domain.Session, error) {
	var ms mongoSession
	if err := r.coll.FindOne(ctx, bson.M{"token_hash": hash}).Decode(&ms); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return ms.toDomain(), nil
}

// RevokeActive flips revoked false→true in one atomic conditional update and
// returns the document as it was before the flip. When no active record
// matches (never existed, already rotated out, or a concurrent caller won
// the race) the result is domain.ErrSessionNotFound.
func (r *SessionRepository) RevokeActive(ctx context.Context, hash string) (*domain.Session, error) {
	filter := bson.M{"token_hash": hash, "revoked": false}
	update := bson.M{"$set": bson.M{"revoked": true}}

	var ms mongoSession
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&ms)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("revoke active session: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *SessionRepository) Revoke(ctx context.Context, hash string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"token_hash": hash},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAllForAccount(ctx context.Context, accountID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"account_id": accountID},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	if err != nil {
		return fmt.Errorf("revoke all sessions: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteAllForAccount(ctx context.Context, accountID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
