package handler

import "github.com/identity-systems/user-api/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type adminRegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
	AdminCode string `json:"adminCode" validate:"required"`
}

type loginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// userRequest is the shared shape of direct create and update. Password is
// required on create and optional on update, checked in the handler.
type userRequest struct {
	Name     string `json:"name" validate:"required"`
	Age      *int   `json:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type loginResponse struct {
	Token string             `json:"token"`
	User  *domain.PublicUser `json:"user"`
}
