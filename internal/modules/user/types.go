package user

import (
	"errors"

	"github.com/raline/core/internal/models"
)

var (
	errEmailTaken   = errors.New("email already registered")
	errBadLogin     = errors.New("invalid email or password")
	errUserNotFound = errors.New("user not found")
)

type RegisterReq struct {
	DisplayName string `json:"display_name" binding:"required"`
	Email       string `json:"email"        binding:"required,email"`
	Password    string `json:"password"     binding:"required,min=6"`
	URL         string `json:"url"`
}

type LoginReq struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResp struct {
	ObjectID    uint    `json:"objectId"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Type        string  `json:"type"`
	URL         *string `json:"url,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

type TokenResp struct {
	UserResp
	Token string `json:"token"`
}

func toResp(u *models.UserModel) UserResp {
	return UserResp{
		ObjectID:    u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Type:        u.Type,
		URL:         u.URL,
		Avatar:      u.Avatar,
	}
}
