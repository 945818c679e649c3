package service

import (
	"time"

	"go-gin-user-api/internal/domain"
)

// CreateUserInput 注册入参。binding 标签由 gin 在绑定时执行，
// 未声明字段靠 DisallowUnknownFields 拒绝
type CreateUserInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=admin user moderator"`
}

// UpdateUserInput 局部更新：全部可选，出现的字段按创建同规则校验
type UpdateUserInput struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
	FirstName *string `json:"firstName" binding:"omitempty,min=1"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin user moderator"`
}

// ListUsersQuery 列表查询参数。isActive 只收严格字面量 "true"/"false"
type ListUsersQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=10" binding:"min=1,max=100"`
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=admin user moderator"`
	IsActive string `form:"isActive" binding:"omitempty,oneof=true false"`
}

// UserView 出参白名单：password 不在字段表里，任何路径都带不出去
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUserView(u *domain.User) *UserView {
	return &UserView{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	TotalItems      int64 `json:"totalItems"`
	TotalPages      int64 `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPageMeta totalPages = ceil(totalItems/limit)
func NewPageMeta(page, limit int, totalItems int64) PageMeta {
	totalPages := (totalItems + int64(limit) - 1) / int64(limit)
	return PageMeta{
		CurrentPage:     page,
		ItemsPerPage:    limit,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     int64(page) < totalPages,
		HasPreviousPage: page > 1,
	}
}

type UserPage struct {
	Data []*UserView `json:"data"`
	Meta PageMeta    `json:"meta"`
}
