package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 角色枚举
const (
	RoleAdmin     = "admin"
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// User 持久化实体。password 只存 bcrypt 哈希，读路径一律投影掉
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"` // 小写 + trim 后入库
	PasswordHash string             `bson:"password"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName"`
	Role         string             `bson:"role"`
	IsActive     bool               `bson:"isActive"`
	IsDeleted    bool               `bson:"isDeleted"` // 软删标记
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// UserFilter 列表查询条件（已过校验，由 service 组装）
type UserFilter struct {
	Search   string // firstName/lastName/email 大小写不敏感子串
	Role     string
	IsActive *bool
	Page     int
	Limit    int
}

// UserPatch 局部更新：非 nil 字段才写（$set 语义）
type UserPatch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Role         *string
}

// UserRepository 存储端口。查不到统一返回 (nil, nil)，error 只留给真实故障
type UserRepository interface {
	Insert(ctx context.Context, u *User) (*User, error)
	// FindByEmail 只查未软删记录；返回完整文档（含哈希）
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByID 只查未软删记录；password 投影掉
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	// FindPage 并发取页 + 总数；按 createdAt 倒序
	FindPage(ctx context.Context, f UserFilter) ([]User, int64, error)
	// UpdateByID 原子条件更新（id 匹配且未软删），返回更新后的文档；无匹配 (nil, nil)
	UpdateByID(ctx context.Context, id primitive.ObjectID, p UserPatch) (*User, error)
	// SoftDelete 原子置 isDeleted/deletedAt，条件 isDeleted=false；返回是否命中
	SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error)
	Count(ctx context.Context) (int64, error)
}
