package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"rgarchitects/internal/user"
)

const usersPath = "/api/users"

// APIError ответ сервера с неуспешным статусом.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Client типизированный клиент REST ресурса /api/users.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := c.do(ctx, http.MethodGet, usersPath, nil, http.StatusOK, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*user.User, error) {
	u := &user.User{}
	if err := c.do(ctx, http.MethodGet, userPath(id), nil, http.StatusOK, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Create отправляет запись без id, его назначит сервер.
func (c *Client) Create(ctx context.Context, u user.User) (*user.User, error) {
	u.ID = 0
	created := &user.User{}
	if err := c.do(ctx, http.MethodPost, usersPath, u, http.StatusCreated, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, u user.User) error {
	return c.do(ctx, http.MethodPut, userPath(u.ID), u, http.StatusNoContent, nil)
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, userPath(id), nil, http.StatusNoContent, nil)
}

func userPath(id int64) string {
	return fmt.Sprintf("%s/%d", usersPath, id)
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, want int, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage достаёт текст ошибки из {"error": ...}, из тела валидации
// {"errors": {...}} или из обычного текста.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		Error  string              `json:"error"`
		Title  string              `json:"title"`
		Errors map[string][]string `json:"errors"`
	}
	if json.Unmarshal(data, &body) == nil {
		if len(body.Errors) > 0 {
			fields := make([]string, 0, len(body.Errors))
			for f := range body.Errors {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			var msgs []string
			for _, f := range fields {
				msgs = append(msgs, body.Errors[f]...)
			}
			return strings.Join(msgs, "; ")
		}
		if body.Error != "" {
			return body.Error
		}
		if body.Title != "" {
			return body.Title
		}
	}

	return strings.TrimSpace(string(data))
}

// Message превращает любую ошибку клиента в одну строку для показа пользователю.
func Message(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fmt.Sprintf("Server returned %d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	case errors.Is(err, context.DeadlineExceeded):
		return "The server did not respond in time"
	default:
		return "Network error: " + err.Error()
	}
}
