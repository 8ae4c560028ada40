package repository

import (
	"errors"
	"time"

	"jobify-backend/internal/tracker/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository using GORM
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindOrCreate(email string) (*domain.User, error) {
	var user domain.User
	now := time.Now()
	result := r.db.Where("email = ?", email).FirstOrCreate(&user, domain.User{
		Email:         email,
		Provider:      domain.ProviderGmail,
		SyncWatermark: time.Unix(0, 0).UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListAll() ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.Order("email ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) Update(user *domain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.Save(user).Error
}

func (r *userRepository) AdvanceWatermark(email string, watermark time.Time) error {
	return r.db.Model(&domain.User{}).
		Where("email = ? AND sync_watermark <= ?", email, watermark).
		Updates(map[string]interface{}{
			"sync_watermark":  watermark,
			"first_sync_done": true,
			"updated_at":      time.Now(),
		}).Error
}
