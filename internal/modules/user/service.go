package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/raline/core/internal/models"
	"github.com/raline/core/internal/pkg/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 30 * 24 * time.Hour

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Register creates an account. The very first account becomes the site
// administrator.
func (s *Service) Register(ctx context.Context, req *RegisterReq) (*models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", email).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, errEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.UserModel{}).Count(&total).Error; err != nil {
		return nil, err
	}
	userType := models.UserTypeNormal
	if total == 0 {
		userType = models.UserTypeAdmin
	}

	u := models.UserModel{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       email,
		Password:    string(hash),
		Type:        userType,
	}
	if v := strings.TrimSpace(req.URL); v != "" {
		u.URL = &v
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("id", u.ID), zap.String("type", u.Type))
	return &u, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, req *LoginReq) (string, *models.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errBadLogin
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return "", nil, errBadLogin
	}

	token, err := jwt.Sign(u.ID, u.Type, u.Email, tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, &u, nil
}

// Get loads one user by id.
func (s *Service) Get(ctx context.Context, id uint) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByIDs loads the accounts referenced by a batch of comments.
func (s *Service) FindByIDs(ctx context.Context, ids []uint) ([]models.UserModel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.UserModel
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}
