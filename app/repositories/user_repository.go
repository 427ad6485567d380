package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/pkg/orm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail matches the lower-cased address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user)
	return user, translate(err)
}

// FindActiveByEmail is FindByEmail restricted to active accounts.
func (r *UserRepository) FindActiveByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&user)
	return user, translate(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, translate(err)
}

// Create returns ErrDuplicate when the email is already registered.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}
