package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"investment_game/internal/feature/portfolio/domain"
	"investment_game/internal/feature/portfolio/domain/entity"
	"investment_game/internal/feature/portfolio/usecase"
)

// usersCollection is the MongoDB collection holding one document per user.
const usersCollection = "users"

// userDocument is the BSON shape of a user; holdings are embedded as "stocks".
type userDocument struct {
	ID           bson.ObjectID     `bson:"_id,omitempty"`
	Username     string            `bson:"username"`
	PasswordHash string            `bson:"password"`
	CashBalance  bson.Decimal128   `bson:"cashBalance"`
	TotalBalance bson.Decimal128   `bson:"totalBalance"`
	Stocks       []holdingDocument `bson:"stocks"`
	Version      int64             `bson:"version"`
	CreatedAt    time.Time         `bson:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt"`
}

type holdingDocument struct {
	Name      string          `bson:"name"`
	NumShares int64           `bson:"numShares"`
	BuyPrice  bson.Decimal128 `bson:"buyPrice"`
	CurPrice  bson.Decimal128 `bson:"curPrice"`
}

// userCollection is the part of *mongo.Collection the store uses.
type userCollection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
	Indexes() mongo.IndexView
}

// userMongo is a MongoDB implementation of the user store.
type userMongo struct {
	coll userCollection
}

// Compile-time check to ensure userMongo implements UserRepository.
var _ usecase.UserRepository = (*userMongo)(nil)

var _ userCollection = (*mongo.Collection)(nil)

// NewUserMongo creates a new instance of userMongo backed by db's users collection.
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique username index.
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a new user document with version 1.
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	u.Version = 1
	u.CreatedAt = now
	u.UpdatedAt = now

	doc, err := userDocumentFromEntity(u)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUsernameTaken
		}
		return err
	}
	return nil
}

// FindByUsername loads a user document.
func (r *userMongo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toEntity()
}

// Save replaces the user document if its version still equals u.Version.
func (r *userMongo) Save(ctx context.Context, u *entity.User) error {
	next := *u
	next.Version = u.Version + 1
	next.UpdatedAt = time.Now().UTC()

	doc, err := userDocumentFromEntity(&next)
	if err != nil {
		return err
	}
	filter := bson.D{
		{Key: "username", Value: u.Username},
		{Key: "version", Value: u.Version},
	}
	res, err := r.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrVersionConflict
	}

	u.Version = next.Version
	u.UpdatedAt = next.UpdatedAt
	return nil
}

func userDocumentFromEntity(u *entity.User) (*userDocument, error) {
	cash, err := toDecimal128(u.CashBalance)
	if err != nil {
		return nil, err
	}
	total, err := toDecimal128(u.TotalBalance)
	if err != nil {
		return nil, err
	}

	stocks := make([]holdingDocument, len(u.Holdings))
	for i, h := range u.Holdings {
		buy, err := toDecimal128(h.AvgCost)
		if err != nil {
			return nil, err
		}
		cur, err := toDecimal128(h.LastPrice)
		if err != nil {
			return nil, err
		}
		stocks[i] = holdingDocument{Name: h.Ticker, NumShares: h.Shares, BuyPrice: buy, CurPrice: cur}
	}

	return &userDocument{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CashBalance:  cash,
		TotalBalance: total,
		Stocks:       stocks,
		Version:      u.Version,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func (d *userDocument) toEntity() (*entity.User, error) {
	cash, err := fromDecimal128(d.CashBalance)
	if err != nil {
		return nil, err
	}
	total, err := fromDecimal128(d.TotalBalance)
	if err != nil {
		return nil, err
	}

	holdings := make([]entity.Holding, len(d.Stocks))
	for i, s := range d.Stocks {
		avg, err := fromDecimal128(s.BuyPrice)
		if err != nil {
			return nil, err
		}
		last, err := fromDecimal128(s.CurPrice)
		if err != nil {
			return nil, err
		}
		holdings[i] = entity.Holding{Ticker: s.Name, Shares: s.NumShares, AvgCost: avg, LastPrice: last}
	}

	return &entity.User{
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CashBalance:  cash,
		TotalBalance: total,
		Holdings:     holdings,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v bson.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", v, err)
	}
	return d, nil
}
