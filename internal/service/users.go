package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/hash"
	"github.com/stratos-aero/stratos/internal/models"
)

type UserService struct {
	DB *gorm.DB
}

type UserFilter struct {
	Username  string
	Role      models.UserRole
	SortBy    string
	SortOrder string
}

type UserInput struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

var userSortColumns = map[string]string{
	"username": "username",
	"role":     "role",
}

func (s *UserService) List(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := s.DB.WithContext(ctx).Model(&models.User{})
	if f.Username != "" {
		q = q.Where("username LIKE ?", "%"+f.Username+"%")
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	col, ok := userSortColumns[f.SortBy]
	if !ok {
		col = "username"
	}
	order := "ASC"
	if f.SortOrder == "desc" || f.SortOrder == "DESC" {
		order = "DESC"
	}
	var users []models.User
	if err := q.Order(col + " " + order).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, validation("Username and password are required")
	}
	var existing models.User
	err := s.DB.WithContext(ctx).Where("username = ?", in.Username).First(&existing).Error
	if err == nil {
		return nil, &Error{Kind: KindUsernameExists, Message: "Username already exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     in.Username,
		PasswordHash: pwHash,
		Role:         in.Role,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Username = in.Username
	user.Role = in.Role
	if in.Password != "" {
		pwHash, err := hash.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
	}
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// SetPassword rehashes and stores a new password, used by the reset flow.
func (s *UserService) SetPassword(ctx context.Context, username, password string) error {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = pwHash
	return s.DB.WithContext(ctx).Save(user).Error
}

func (s *UserService) Roles() []models.UserRole {
	return models.AllUserRoles()
}
