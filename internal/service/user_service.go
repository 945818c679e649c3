package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-gin-user-api/internal/core/apperr"
	"go-gin-user-api/internal/domain"
	"go-gin-user-api/pkg/utils"
)

type UserService struct {
	repo domain.UserRepository
}

func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Create 查重（同一归一化 email 未软删至多一条）→ 哈希 → 落库
func (s *UserService) Create(ctx context.Context, in *CreateUserInput) (*UserView, error) {
	email := normalizeEmail(in.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("query user failed", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password failed", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := time.Now().UTC()
	u := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		IsActive:     true,
		IsDeleted:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Insert(ctx, u)
	if err != nil {
		return nil, apperr.Internal("create user failed", err)
	}
	return NewUserView(created), nil
}

// FindAll 组装过滤条件并取页；超出数据范围的 page 返回空列表 + 正确 meta
func (s *UserService) FindAll(ctx context.Context, q *ListUsersQuery) (*UserPage, error) {
	f := domain.UserFilter{
		Search: strings.TrimSpace(q.Search),
		Role:   q.Role,
		Page:   q.Page,
		Limit:  q.Limit,
	}
	if q.IsActive != "" {
		active := q.IsActive == "true"
		f.IsActive = &active
	}

	users, total, err := s.repo.FindPage(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list users failed", err)
	}

	views := make([]*UserView, 0, len(users))
	for i := range users {
		views = append(views, NewUserView(&users[i]))
	}
	return &UserPage{Data: views, Meta: NewPageMeta(q.Page, q.Limit, total)}, nil
}

func (s *UserService) FindOne(ctx context.Context, id string) (*UserView, error) {
	oid, aerr := parseID(id)
	if aerr != nil {
		return nil, aerr
	}
	u, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, apperr.Internal("query user failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound(fmt.Sprintf("User with ID %s not found", id))
	}
	return NewUserView(u), nil
}

// Update $set 语义：只动出现的字段；条件"未软删"由存储层原子判定
func (s *UserService) Update(ctx context.Context, id string, in *UpdateUserInput) (*UserView, error) {
	oid, aerr := parseID(id)
	if aerr != nil {
		return nil, aerr
	}

	p := domain.UserPatch{Role: in.Role}
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		p.Email = &e
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal("hash password failed", err)
		}
		p.PasswordHash = &hash
	}
	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		p.FirstName = &v
	}
	if in.LastName != nil {
		v := strings.TrimSpace(*in.LastName)
		p.LastName = &v
	}

	u, err := s.repo.UpdateByID(ctx, oid, p)
	if err != nil {
		return nil, apperr.Internal("update user failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound(fmt.Sprintf("User with ID %s not found", id))
	}
	return NewUserView(u), nil
}

// Remove 软删。重复删除第二次必然 NotFound（条件写零命中）
func (s *UserService) Remove(ctx context.Context, id string) error {
	oid, aerr := parseID(id)
	if aerr != nil {
		return aerr
	}
	matched, err := s.repo.SoftDelete(ctx, oid)
	if err != nil {
		return apperr.Internal("delete user failed", err)
	}
	if !matched {
		return apperr.NotFound(fmt.Sprintf("User with ID %s not found", id))
	}
	return nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("count users failed", err)
	}
	return n, nil
}

// parseID 24 位 hex 之外一律 400，不打存储
func parseID(id string) (primitive.ObjectID, *apperr.E) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("Invalid ID format")
	}
	return oid, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
