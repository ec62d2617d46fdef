package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAccountRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

type dbAccount struct {
	ID           ID        `bson:"_id"`
	FirstName    string    `bson:"firstname"`
	LastName     string    `bson:"lastname"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
}

// NewMongoAccountRepository keeps accounts in db.accounts and draws numeric
// ids from db.counters. It creates the unique email index.
func NewMongoAccountRepository(ctx context.Context, db *mongo.Database) (Repository, error) {
	c := db.Collection("accounts")
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create email index: %w", err)
	}
	return &mongoAccountRepository{collection: c, counters: db.Collection("counters")}, nil
}

func (m *mongoAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return m.findAccountBy(ctx, "email", email)
}

func (m *mongoAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return m.findAccountBy(ctx, "_id", int(id))
}

func (m *mongoAccountRepository) findAccountBy(ctx context.Context, key string, val interface{}) (*Account, error) {
	var a dbAccount
	err := m.collection.FindOne(ctx, bson.M{key: val}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return accountFromDBAccount(a)
}

func (m *mongoAccountRepository) Store(ctx context.Context, acc *Account) error {
	id, err := nextID(ctx, m.counters, "account")
	if err != nil {
		return err
	}

	dba := dbAccountFromAccount(acc)
	dba.ID = ID(id)
	if _, err := m.collection.InsertOne(ctx, dba); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExistingEmail
		}
		return fmt.Errorf("mongo error: %w", err)
	}

	acc.ID = dba.ID
	return nil
}

func (m *mongoAccountRepository) UpdateProfile(ctx context.Context, id ID, firstName, lastName, email string) (*Account, error) {
	var a dbAccount
	err := m.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": int(id)},
		bson.M{"$set": bson.M{"firstname": firstName, "lastname": lastName, "email": email}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrExistingEmail
	case err != nil:
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return accountFromDBAccount(a)
}

func (m *mongoAccountRepository) UpdatePassword(ctx context.Context, id ID, hash string) error {
	res, err := m.collection.UpdateOne(ctx, bson.M{"_id": int(id)}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// nextID atomically increments the named sequence in counters.
func nextID(ctx context.Context, counters *mongo.Collection, name string) (int, error) {
	var seq struct {
		Value int `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return seq.Value, nil
}

func dbAccountFromAccount(a *Account) dbAccount {
	return dbAccount{a.ID, a.FirstName, a.LastName, a.Email, a.PasswordHash, a.Role.String(), a.CreatedAt}
}

func accountFromDBAccount(a dbAccount) (*Account, error) {
	role, err := ParseRole(a.Role)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", a.ID, err)
	}
	return &Account{a.ID, a.FirstName, a.LastName, a.Email, a.PasswordHash, role, a.CreatedAt}, nil
}
