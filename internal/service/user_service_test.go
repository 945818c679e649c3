package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-gin-user-api/internal/core/apperr"
	"go-gin-user-api/internal/domain"
	"go-gin-user-api/internal/repo"
	"go-gin-user-api/internal/service"
	"go-gin-user-api/pkg/utils"
)

func newSvc() (*service.UserService, *repo.MemoryUserRepo) {
	mem := repo.NewMemoryUserRepo()
	return service.NewUserService(mem), mem
}

func createInput(email string) *service.CreateUserInput {
	return &service.CreateUserInput{
		Email:     email,
		Password:  "secret123",
		FirstName: "John",
		LastName:  "Doe",
	}
}

func defaultQuery() *service.ListUsersQuery {
	return &service.ListUsersQuery{Page: 1, Limit: 10}
}

func requireStatus(t *testing.T, err error, status int) *apperr.E {
	t.Helper()
	require.Error(t, err)
	ae, ok := err.(*apperr.E)
	require.True(t, ok, "expected *apperr.E, got %T", err)
	require.Equal(t, status, ae.Status)
	return ae
}

func TestCreate_DefaultsAndPasswordHandling(t *testing.T) {
	svc, mem := newSvc()

	v, err := svc.Create(context.Background(), createInput("  John.Doe@Example.COM "))
	require.NoError(t, err)

	require.Equal(t, "john.doe@example.com", v.Email)
	require.Equal(t, domain.RoleUser, v.Role)
	require.True(t, v.IsActive)
	require.NotEmpty(t, v.ID)
	require.False(t, v.CreatedAt.IsZero())

	// 出参任何序列化路径都不能出现 password
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NotContains(t, string(b), "password")

	oid, err := primitive.ObjectIDFromHex(v.ID)
	require.NoError(t, err)
	raw, ok := mem.Raw(oid)
	require.True(t, ok)
	require.NotEqual(t, "secret123", raw.PasswordHash)
	require.True(t, utils.CheckPassword("secret123", raw.PasswordHash))
	require.False(t, raw.IsDeleted)
	require.Nil(t, raw.DeletedAt)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput("a@x.com"))
	require.NoError(t, err)

	// 大小写/空白归一化后同一邮箱 → 409，且不落第二条
	_, err = svc.Create(ctx, createInput("  A@X.COM "))
	ae := requireStatus(t, err, 409)
	require.Equal(t, "Email already exists", ae.Msg)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestCreate_ExplicitRole(t *testing.T) {
	svc, _ := newSvc()
	in := createInput("mod@x.com")
	in.Role = domain.RoleModerator
	v, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, domain.RoleModerator, v.Role)
}

// failingRepo：格式非法的 id 必须在打到存储之前被拦下
type failingRepo struct{ t *testing.T }

func (r failingRepo) Insert(context.Context, *domain.User) (*domain.User, error) {
	r.t.Fatal("storage must not be touched")
	return nil, nil
}
func (r failingRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	r.t.Fatal("storage must not be touched")
	return nil, nil
}
func (r failingRepo) FindByID(context.Context, primitive.ObjectID) (*domain.User, error) {
	r.t.Fatal("storage must not be touched")
	return nil, nil
}
func (r failingRepo) FindPage(context.Context, domain.UserFilter) ([]domain.User, int64, error) {
	r.t.Fatal("storage must not be touched")
	return nil, 0, nil
}
func (r failingRepo) UpdateByID(context.Context, primitive.ObjectID, domain.UserPatch) (*domain.User, error) {
	r.t.Fatal("storage must not be touched")
	return nil, nil
}
func (r failingRepo) SoftDelete(context.Context, primitive.ObjectID) (bool, error) {
	r.t.Fatal("storage must not be touched")
	return false, nil
}
func (r failingRepo) Count(context.Context) (int64, error) {
	r.t.Fatal("storage must not be touched")
	return 0, nil
}

func TestMalformedID_RejectedBeforeStorage(t *testing.T) {
	svc := service.NewUserService(failingRepo{t: t})
	ctx := context.Background()

	for _, id := range []string{
		"",
		"abc",
		"0123456789abcdef0123456",   // 23 位
		"0123456789abcdef01234567g", // 非 hex
		"0123456789abcdef012345678", // 25 位
	} {
		_, err := svc.FindOne(ctx, id)
		ae := requireStatus(t, err, 400)
		require.Equal(t, "Invalid ID format", ae.Msg)

		_, err = svc.Update(ctx, id, &service.UpdateUserInput{})
		requireStatus(t, err, 400)

		err = svc.Remove(ctx, id)
		requireStatus(t, err, 400)
	}
}

func TestFindOne_NotFound(t *testing.T) {
	svc, _ := newSvc()
	id := primitive.NewObjectID().Hex()
	_, err := svc.FindOne(context.Background(), id)
	ae := requireStatus(t, err, 404)
	require.Equal(t, fmt.Sprintf("User with ID %s not found", id), ae.Msg)
}

func TestUpdate_PartialMerge(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput("a@x.com"))
	require.NoError(t, err)

	first := "Z"
	v, err := svc.Update(ctx, created.ID, &service.UpdateUserInput{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, "Z", v.FirstName)
	require.Equal(t, created.Email, v.Email)
	require.Equal(t, created.LastName, v.LastName)
	require.Equal(t, created.Role, v.Role)
}

func TestUpdate_RehashesPassword(t *testing.T) {
	svc, mem := newSvc()
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput("a@x.com"))
	require.NoError(t, err)

	pw := "newsecret"
	_, err = svc.Update(ctx, created.ID, &service.UpdateUserInput{Password: &pw})
	require.NoError(t, err)

	oid, _ := primitive.ObjectIDFromHex(created.ID)
	raw, ok := mem.Raw(oid)
	require.True(t, ok)
	require.NotEqual(t, pw, raw.PasswordHash)
	require.True(t, utils.CheckPassword(pw, raw.PasswordHash))
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newSvc()
	first := "Z"
	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(),
		&service.UpdateUserInput{FirstName: &first})
	requireStatus(t, err, 404)
}

func TestRemove_TwiceSecondNotFound(t *testing.T) {
	svc, mem := newSvc()
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput("a@x.com"))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, created.ID))

	oid, _ := primitive.ObjectIDFromHex(created.ID)
	raw, ok := mem.Raw(oid)
	require.True(t, ok)
	require.True(t, raw.IsDeleted)
	require.NotNil(t, raw.DeletedAt)

	err = svc.Remove(ctx, created.ID)
	requireStatus(t, err, 404)
}

func TestRoundTrip_CreateThenFindOne(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput("a@x.com"))
	require.NoError(t, err)

	got, err := svc.FindOne(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func seedUsers(t *testing.T, mem *repo.MemoryUserRepo, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		_, err := mem.Insert(context.Background(), &domain.User{
			Email:     fmt.Sprintf("user%02d@x.com", i),
			FirstName: fmt.Sprintf("First%02d", i),
			LastName:  fmt.Sprintf("Last%02d", i),
			Role:      domain.RoleUser,
			IsActive:  i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func TestFindAll_PaginationAndOrdering(t *testing.T) {
	svc, mem := newSvc()
	seedUsers(t, mem, 25)

	q := &service.ListUsersQuery{Page: 3, Limit: 10}
	page, err := svc.FindAll(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, page.Data, 5)
	require.Equal(t, int64(25), page.Meta.TotalItems)
	require.Equal(t, int64(3), page.Meta.TotalPages)
	require.Equal(t, 3, page.Meta.CurrentPage)
	require.Equal(t, 10, page.Meta.ItemsPerPage)
	require.False(t, page.Meta.HasNextPage)
	require.True(t, page.Meta.HasPreviousPage)

	// createdAt 倒序：第 3 页第一条是第 5 新的
	require.Equal(t, "user04@x.com", page.Data[0].Email)
}

func TestFindAll_PageBeyondData(t *testing.T) {
	svc, mem := newSvc()
	seedUsers(t, mem, 3)

	page, err := svc.FindAll(context.Background(), &service.ListUsersQuery{Page: 9, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.Equal(t, int64(3), page.Meta.TotalItems)
	require.Equal(t, int64(1), page.Meta.TotalPages)
	require.False(t, page.Meta.HasNextPage)
	require.True(t, page.Meta.HasPreviousPage)
}

func TestFindAll_Filters(t *testing.T) {
	svc, mem := newSvc()
	seedUsers(t, mem, 10)
	ctx := context.Background()

	q := defaultQuery()
	q.IsActive = "false"
	page, err := svc.FindAll(ctx, q)
	require.NoError(t, err)
	require.Equal(t, int64(5), page.Meta.TotalItems)
	for _, v := range page.Data {
		require.False(t, v.IsActive)
	}

	q = defaultQuery()
	q.Search = "USER03"
	page, err = svc.FindAll(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "user03@x.com", page.Data[0].Email)

	q = defaultQuery()
	q.Role = domain.RoleAdmin
	page, err = svc.FindAll(ctx, q)
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.Equal(t, int64(0), page.Meta.TotalItems)
	require.Equal(t, int64(0), page.Meta.TotalPages)
	require.False(t, page.Meta.HasNextPage)
}

func TestNewPageMeta_Properties(t *testing.T) {
	cases := []struct {
		page, limit int
		total       int64
		totalPages  int64
	}{
		{1, 10, 0, 0},
		{1, 10, 1, 1},
		{1, 10, 10, 1},
		{2, 10, 11, 2},
		{1, 7, 50, 8},
		{8, 7, 50, 8},
		{9, 7, 50, 8},
		{3, 1, 3, 3},
	}
	for _, tc := range cases {
		m := service.NewPageMeta(tc.page, tc.limit, tc.total)
		require.Equal(t, tc.totalPages, m.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
		require.Equal(t, int64(tc.page) < tc.totalPages, m.HasNextPage)
		require.Equal(t, tc.page > 1, m.HasPreviousPage)
		require.Equal(t, tc.total, m.TotalItems)
	}
}

// spec 场景：建 A、B → 搜索只中 A → 改 A → 删 A → 只剩 B
func TestScenario_CreateSearchUpdateRemove(t *testing.T) {
	svc, _ := newSvc()
	ctx := context.Background()

	a, err := svc.Create(ctx, createInput("a@x.com"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, createInput("b@x.com"))
	require.NoError(t, err)

	q := defaultQuery()
	q.Search = "a@x"
	page, err := svc.FindAll(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, a.ID, page.Data[0].ID)

	first := "Z"
	updated, err := svc.Update(ctx, a.ID, &service.UpdateUserInput{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, "Z", updated.FirstName)
	require.Equal(t, "a@x.com", updated.Email)

	require.NoError(t, svc.Remove(ctx, a.ID))

	_, err = svc.FindOne(ctx, a.ID)
	requireStatus(t, err, 404)

	page, err = svc.FindAll(ctx, defaultQuery())
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, b.ID, page.Data[0].ID)
}
