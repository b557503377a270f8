package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgarchitects/internal/user"
	"rgarchitects/internal/user/repository"
	"rgarchitects/internal/user/service"
	"rgarchitects/pkg/db"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	repo := repository.NewGormUserRepository(gdb)
	require.NoError(t, repo.AutoMigrate(context.Background()))

	return routerFor(service.NewUserService(repo, nil))
}

func routerFor(svc *service.UserService) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestScenarioAnnLee(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/users", `{"firstName":"Ann","lastName":"Lee","email":"a@x.com","isManager":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/users/1", rec.Header().Get("Location"))
	created := decode[user.User](t, rec)
	assert.Equal(t, user.User{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "a@x.com"}, created)

	rec = do(t, h, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[user.User](t, rec))

	rec = do(t, h, http.MethodPut, "/api/users/1", `{"id":1,"firstName":"Ann","lastName":"Lee","email":"a@x.com","isManager":true}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[user.User](t, rec).IsManager)

	rec = do(t, h, http.MethodDelete, "/api/users/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReturnsJSONArray(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, name := range []string{"Cy", "Bo", "Al"} {
		rec = do(t, h, http.MethodPost, "/api/users", `{"firstName":"`+name+`","lastName":"X","email":"x@x.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/users", "")
	users := decode[[]user.User](t, rec)
	require.Len(t, users, 3)
	assert.EqualValues(t, 1, users[0].ID)
	assert.EqualValues(t, 3, users[2].ID)
	assert.Equal(t, "Al", users[2].FirstName)
}

func TestCreateIgnoresClientID(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/users", `{"id":77,"firstName":"Ann","lastName":"Lee","email":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, decode[user.User](t, rec).ID)
}

func TestCreateValidationProblem(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/users", `{"firstName":"Ann","lastName":"","email":" "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	problem := decode[ValidationProblem](t, rec)
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Contains(t, problem.Errors, "lastName")
	assert.Contains(t, problem.Errors, "email")
	assert.NotContains(t, problem.Errors, "firstName")

	rec = do(t, h, http.MethodGet, "/api/users", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateAcceptsAnyEmailShape(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/users", `{"firstName":"Ann","lastName":"Lee","email":"not-an-email"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateMalformedJSON(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/users", `{"firstName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid JSON")
}

func TestUpdateIDMismatch(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/users", `{"firstName":"Ann","lastName":"Lee","email":"a@x.com"}`).Code)

	rec := do(t, h, http.MethodPut, "/api/users/1", `{"id":2,"firstName":"Bob","lastName":"Ray","email":"b@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// тело без id тоже не совпадает с путём
	rec = do(t, h, http.MethodPut, "/api/users/1", `{"firstName":"Bob","lastName":"Ray","email":"b@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, "Ann", decode[user.User](t, rec).FirstName)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/api/users/4", `{"id":4,"firstName":"Ann","lastName":"Lee","email":"a@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodDelete, "/api/users/12", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNonIntegerIDDoesNotMatchRoute(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/api/users/abc", "/api/users/-1", "/api/users/99999999999999999999"} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

type conflictRepo struct {
	service.UserRepository
}

func (conflictRepo) Update(context.Context, *user.User) error { return user.ErrConflict }

func TestUpdateConflictIsServerError(t *testing.T) {
	h := routerFor(service.NewUserService(conflictRepo{}, nil))

	rec := do(t, h, http.MethodPut, "/api/users/1", `{"id":1,"firstName":"Ann","lastName":"Lee","email":"a@x.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Header().Get("Content-Type"), "json")
}
