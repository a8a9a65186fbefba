package echoapi

import (
	"github.com/htpham/tutorhub/core"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (prr *PasswordResetRequest) Validate() error {
	prr.Email = core.CleanString(prr.Email, true /* lower */)
	return core.Validate.Struct(prr)
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type DestroyMultipleRequest struct {
	IDs []string `json:"ids"`
}

// AssignClassRequest moves a student to a class; an empty class ID
// unassigns them.
type AssignClassRequest struct {
	ClassID string `json:"class_id"`
}
