package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-gin-user-api/internal/domain"
)

// MemoryUserRepo 内存实现，语义对齐 mongo 版（软删过滤、password 投影、
// createdAt 倒序）。测试与本地联调用
type MemoryUserRepo struct {
	mu    sync.Mutex
	users []domain.User
}

func NewMemoryUserRepo() *MemoryUserRepo { return &MemoryUserRepo{} }

func (r *MemoryUserRepo) Insert(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users = append(r.users, *u)
	return u, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if !r.users[i].IsDeleted && r.users[i].Email == email {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if !r.users[i].IsDeleted && r.users[i].ID == id {
			u := project(r.users[i])
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindPage(_ context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]domain.User, 0, len(r.users))
	for i := range r.users {
		if matches(r.users[i], f) {
			matched = append(matched, project(r.users[i]))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))

	skip := (f.Page - 1) * f.Limit
	if skip >= len(matched) {
		return []domain.User{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *MemoryUserRepo) UpdateByID(_ context.Context, id primitive.ObjectID, p domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].IsDeleted || r.users[i].ID != id {
			continue
		}
		u := &r.users[i]
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.PasswordHash != nil {
			u.PasswordHash = *p.PasswordHash
		}
		if p.FirstName != nil {
			u.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			u.LastName = *p.LastName
		}
		if p.Role != nil {
			u.Role = *p.Role
		}
		u.UpdatedAt = time.Now().UTC()
		out := project(*u)
		return &out, nil
	}
	return nil, nil
}

func (r *MemoryUserRepo) SoftDelete(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if !r.users[i].IsDeleted && r.users[i].ID == id {
			now := time.Now().UTC()
			r.users[i].IsDeleted = true
			r.users[i].DeletedAt = &now
			r.users[i].UpdatedAt = now
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.users {
		if !r.users[i].IsDeleted {
			n++
		}
	}
	return n, nil
}

// Raw 按 id 取原始记录（含哈希、含软删），测试校验持久化状态用
func (r *MemoryUserRepo) Raw(id primitive.ObjectID) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			return r.users[i], true
		}
	}
	return domain.User{}, false
}

func matches(u domain.User, f domain.UserFilter) bool {
	if u.IsDeleted {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.IsActive != nil && u.IsActive != *f.IsActive {
		return false
	}
	if f.Search != "" {
		s := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.FirstName), s) &&
			!strings.Contains(strings.ToLower(u.LastName), s) &&
			!strings.Contains(strings.ToLower(u.Email), s) {
			return false
		}
	}
	return true
}

func project(u domain.User) domain.User {
	u.PasswordHash = ""
	return u
}
