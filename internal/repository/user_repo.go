package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/bill_reminder_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.Create(user).Error
}

func (r *UserRepository) first(query string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	return r.first("id = ?", id)
}

// GetByEmail 邮箱不区分大小写
func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	return r.first("email = ?", normalizeEmail(email))
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) exists(column, value string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where(column+" = ?", value).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	return r.exists("email", normalizeEmail(email))
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	return r.exists("username", username)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
