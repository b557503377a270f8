package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"rgarchitects/internal/metrics"
	"rgarchitects/internal/user"
	"rgarchitects/internal/user/events"
)

var ErrIDMismatch = errors.New("id in path does not match id in body")

type UserRepository interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id int64) error
}

type UserService struct {
	repo   UserRepository
	events events.Publisher
}

func NewUserService(repo UserRepository, publisher events.Publisher) *UserService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &UserService{repo: repo, events: publisher}
}

func (s *UserService) List(ctx context.Context) (users []user.User, err error) {
	defer observe("list", &err)
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (u *user.User, err error) {
	defer observe("get", &err)
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, u *user.User) (_ *user.User, err error) {
	defer observe("create", &err)

	if err = s.repo.Create(ctx, u); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	created := *u
	s.publish(ctx, events.New(events.TypeCreated, created.ID, &created))
	return u, nil
}

// Update заменяет все поля строки id. Строка, удалённая между проверкой и
// коммитом, даёт user.ErrNotFound; любой другой конфликт пробрасывается как есть.
func (s *UserService) Update(ctx context.Context, id int64, u *user.User) (err error) {
	defer observe("update", &err)

	if id != u.ID {
		return ErrIDMismatch
	}

	if err = s.repo.Update(ctx, u); err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", id).Msg("Error updating user")
		}
		return err
	}

	updated := *u
	s.publish(ctx, events.New(events.TypeUpdated, id, &updated))
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int64) (err error) {
	defer observe("delete", &err)

	if err = s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", id).Msg("Error deleting user")
		}
		return err
	}

	s.publish(ctx, events.New(events.TypeDeleted, id, nil))
	return nil
}

// publish не влияет на результат запроса: данные уже закоммичены.
func (s *UserService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		metrics.UserEventsPublishFailures.WithLabelValues(string(e.Type)).Inc()
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("event_type", string(e.Type)).
			Int64("user_id", e.UserID).
			Msg("Failed to publish user event")
	}
}

func observe(operation string, err *error) {
	metrics.UserOperationsTotal.WithLabelValues(operation, result(*err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, user.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIDMismatch):
		return "id_mismatch"
	case errors.Is(err, user.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
