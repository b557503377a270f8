package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgarchitects/internal/user"
	"rgarchitects/internal/user/repository"
	"rgarchitects/internal/user/service"
	userhttp "rgarchitects/internal/user/transport/http"
	"rgarchitects/pkg/db"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	repo := repository.NewGormUserRepository(gdb)
	require.NoError(t, repo.AutoMigrate(context.Background()))

	r := chi.NewRouter()
	userhttp.NewHandler(service.NewUserService(repo, nil)).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCRUD(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL+"/", srv.Client())
	ctx := context.Background()

	users, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	created, err := c.Create(ctx, user.User{ID: 9, FirstName: "Ann", LastName: "Lee", Email: "a@x.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.ID)

	created.IsManager = true
	require.NoError(t, c.Update(ctx, *created))

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	require.NoError(t, c.Delete(ctx, created.ID))

	_, err = c.Get(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "user not found", apiErr.Message)
}

func TestClientValidationMessage(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())

	_, err := c.Create(context.Background(), user.User{FirstName: "Ann"})
	require.Error(t, err)
	assert.Equal(t, "email is required; lastName is required", Message(err))
}

func TestClientPlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.Client()).List(context.Background())
	assert.Equal(t, "Internal Server Error", Message(err))
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, Message(err), "Network error")
}

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(nil))
	assert.Equal(t, "Server returned 404 Not Found", Message(&APIError{StatusCode: http.StatusNotFound}))
	assert.Equal(t, "The server did not respond in time", Message(context.DeadlineExceeded))
	assert.Equal(t, "Network error: boom", Message(errors.New("boom")))
}
