package user

import (
	"context"
	"sort"
	"time"

	"github.com/Kyz7/storefront/internal/apperror"
	"github.com/Kyz7/storefront/internal/auth"
	"github.com/Kyz7/storefront/internal/middleware"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/sanitize"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service struct {
	db       *gorm.DB
	resolver *middleware.Resolver
}

func NewService(db *gorm.DB, resolver *middleware.Resolver) *Service {
	return &Service{db: db, resolver: resolver}
}

type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Age      *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	Password string `json:"password" validate:"required,min=8"`
}

type ProfileInput struct {
	UserID  uint           `json:"user" validate:"required"`
	Gender  *models.Gender `json:"gender" validate:"omitempty,oneof=Male Female"`
	DOB     *string        `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Address *string        `json:"address" validate:"omitempty,max=500"`
}

type ProfilePatch struct {
	Gender  *models.Gender `json:"gender" validate:"omitempty,oneof=Male Female"`
	DOB     *string        `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Address *string        `json:"address" validate:"omitempty,max=500"`
}

// Detail is a user with profile and the flattened names of every permission
// granted through their roles.
type Detail struct {
	*models.User
	Permissions []string `json:"permissions"`
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	return s.create(ctx, in, false)
}

// CreateSuperuser creates an active account that bypasses every permission check.
func (s *Service) CreateSuperuser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	return s.create(ctx, in, true)
}

func (s *Service) create(ctx context.Context, in CreateUserInput, superuser bool) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check username")
	}
	if count > 0 {
		return nil, apperror.Conflict("Username already taken")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := models.User{
		Name:        sanitize.Text(in.Name),
		Username:    in.Username,
		Email:       in.Email,
		Age:         in.Age,
		Password:    hash,
		IsActive:    true,
		IsSuperuser: superuser,
	}
	if err := db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Username already taken")
		}
		return nil, errors.Wrap(err, "create user")
	}
	return &u, nil
}

// ListUsers returns active accounts only.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Profile").Where("is_active = ?", true).Order("id").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Preload("Profile").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("User")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &u, nil
}

func (s *Service) Detail(ctx context.Context, id uint) (*Detail, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	granted, err := s.resolver.Granted(ctx, id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(granted))
	for name := range granted {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Detail{User: u, Permissions: names}, nil
}

func (s *Service) CreateProfile(ctx context.Context, in ProfileInput) (*models.Profile, error) {
	db := s.db.WithContext(ctx)

	if err := db.First(&models.User{}, in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, errors.Wrap(err, "load user")
	}

	var count int64
	if err := db.Model(&models.Profile{}).Where("user_id = ?", in.UserID).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check profile")
	}
	if count > 0 {
		return nil, apperror.Conflict("Profile for this user already exists")
	}

	dob, err := parseDate(in.DOB)
	if err != nil {
		return nil, err
	}

	profile := models.Profile{
		UserID:  in.UserID,
		Gender:  in.Gender,
		DOB:     dob,
		Address: sanitize.TextPtr(in.Address),
	}
	if err := db.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Profile for this user already exists")
		}
		return nil, errors.Wrap(err, "create profile")
	}
	return &profile, nil
}

func (s *Service) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Preload("User").First(&profile, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Profile")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get profile")
	}
	return &profile, nil
}

// UpdateProfile applies only the fields present in patch.
func (s *Service) UpdateProfile(ctx context.Context, id uint, patch ProfilePatch) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Gender != nil {
		updates["gender"] = *patch.Gender
	}
	if patch.DOB != nil {
		dob, err := parseDate(patch.DOB)
		if err != nil {
			return nil, err
		}
		updates["dob"] = *dob
	}
	if patch.Address != nil {
		updates["address"] = sanitize.Text(*patch.Address)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			return nil, errors.Wrap(err, "update profile")
		}
	}
	return s.GetProfile(ctx, id)
}

func parseDate(value *string) (*datatypes.Date, error) {
	if value == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, apperror.Validation(map[string]string{"dob": "dob must match " + dateLayout})
	}
	d := datatypes.Date(t)
	return &d, nil
}
