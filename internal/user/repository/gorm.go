package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rgarchitects/internal/user"
	"rgarchitects/pkg/db"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// conn отдаёт сессию текущего запроса, если middleware её положил в контекст.
func (r *GormUserRepository) conn(ctx context.Context) *gorm.DB {
	return db.Session(ctx, r.db)
}

func (r *GormUserRepository) AutoMigrate(ctx context.Context) error {
	return r.conn(ctx).AutoMigrate(&user.User{})
}

func (r *GormUserRepository) List(ctx context.Context) ([]user.User, error) {
	users := make([]user.User, 0)
	if err := r.conn(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u := &user.User{}
	err := r.conn(ctx).Where("id = ?", id).First(u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *GormUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&user.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create игнорирует id от клиента, его назначает база.
func (r *GormUserRepository) Create(ctx context.Context, u *user.User) error {
	u.ID = 0
	return r.conn(ctx).Create(u).Error
}

// Update перезаписывает все поля кроме id. Если ни одна строка не обновилась,
// перепроверяет существование: пропавшая строка даёт ErrNotFound, иначе ErrConflict.
func (r *GormUserRepository) Update(ctx context.Context, u *user.User) error {
	conn := r.conn(ctx)
	res := conn.Model(&user.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"is_manager": u.IsManager,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	exists, err := r.Exists(ctx, u.ID)
	if err != nil {
		return err
	}
	if !exists {
		return user.ErrNotFound
	}
	return user.ErrConflict
}

func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		u := &user.User{}
		if err := tx.Where("id = ?", id).First(u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return user.ErrNotFound
			}
			return err
		}
		return tx.Delete(u).Error
	})
}
