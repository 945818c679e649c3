package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"go-gin-user-api/internal/core/apperr"
	"go-gin-user-api/internal/service"
	mdw "go-gin-user-api/internal/transport/http/middleware"
	resp "go-gin-user-api/internal/transport/http/response"
)

type UserHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

// Create POST /api/users → 201
func (h *UserHandler) Create(c *gin.Context) {
	var in service.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, bindError(err))
		return
	}
	v, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(v))
}

// List GET /api/users → 200，data = {data, meta}
func (h *UserHandler) List(c *gin.Context) {
	var q service.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, bindError(err))
		return
	}
	page, err := h.svc.FindAll(c.Request.Context(), &q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(page))
}

// Get GET /api/users/:id → 200
func (h *UserHandler) Get(c *gin.Context) {
	v, err := h.svc.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(v))
}

// Update PATCH /api/users/:id → 200
func (h *UserHandler) Update(c *gin.Context) {
	var in service.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, bindError(err))
		return
	}
	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(v))
}

// Delete DELETE /api/users/:id → 204 空响应体
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail 错误分类 → 状态码 + 错误信封；非业务错误一律 500 且不外漏细节
func (h *UserHandler) fail(c *gin.Context, err error) {
	var ae *apperr.E
	if errors.As(err, &ae) {
		if ae.Status >= http.StatusInternalServerError {
			h.log.Error(ae.Msg,
				zap.String("rid", mdw.RequestIDFrom(c)),
				zap.Error(ae.Err),
			)
			c.JSON(http.StatusInternalServerError,
				resp.Err(http.StatusInternalServerError, "Internal Server Error", nil))
			return
		}
		c.JSON(ae.Status, resp.Err(ae.Status, ae.Msg, ae.Fields))
		return
	}
	h.log.Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		resp.Err(http.StatusInternalServerError, "Internal Server Error", nil))
}

// bindError 绑定失败 → 400。校验错误展开成字段明细，
// JSON 语法 / 未声明字段直接带原因
func bindError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		fields := make([]apperr.FieldError, 0, len(ves))
		for _, fe := range ves {
			fields = append(fields, apperr.FieldError{
				Field:   lowerFirst(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		return apperr.Validation(fields)
	}
	return apperr.BadRequest(err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " should not be empty"
	case "email":
		return "Please provide a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must not be less than %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must not be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
