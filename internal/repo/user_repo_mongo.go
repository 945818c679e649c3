package repo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"go-gin-user-api/internal/domain"
)

// password 读路径统一投影掉（响应层还有一道白名单兜底）
var noPassword = bson.M{"password": 0}

type UserRepo struct{ col *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{col: db.Collection("users")}
}

func (r *UserRepo) Insert(ctx context.Context, u *domain.User) (*domain.User, error) {
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.col.FindOne(ctx, bson.M{"email": email, "isDeleted": false}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := r.col.FindOne(ctx,
		bson.M{"_id": id, "isDeleted": false},
		options.FindOne().SetProjection(noPassword),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindPage 取页和 count 并发发出，互不依赖，join 后返回
func (r *UserRepo) FindPage(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	filter := buildListFilter(f)
	skip := int64(f.Page-1) * int64(f.Limit)

	users := make([]domain.User, 0, f.Limit)
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := options.Find().
			SetProjection(noPassword).
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(skip).
			SetLimit(int64(f.Limit))
		cur, err := r.col.Find(gctx, filter, opts)
		if err != nil {
			return err
		}
		return cur.All(gctx, &users)
	})
	g.Go(func() error {
		n, err := r.col.CountDocuments(gctx, filter)
		total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, p domain.UserPatch) (*domain.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		set["password"] = *p.PasswordHash
	}
	if p.FirstName != nil {
		set["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		set["lastName"] = *p.LastName
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}

	var u domain.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(noPassword),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"isDeleted": false})
}

// buildListFilter 软删永远排除；search 是三字段大小写不敏感子串（$or）
func buildListFilter(f domain.UserFilter) bson.M {
	filter := bson.M{"isDeleted": false}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"firstName": re},
			bson.M{"lastName": re},
			bson.M{"email": re},
		}
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.IsActive != nil {
		filter["isActive"] = *f.IsActive
	}
	return filter
}
