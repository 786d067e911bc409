package dto

// LoginRequest payload. PlayerID is the device's push subscription id.
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"required"`
	PlayerID string `json:"player_id"`
}

// SendOTPRequest payload.
type SendOTPRequest struct {
	Email string `json:"email" validate:"notblank"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"notblank"`
	OTP         string `json:"otp" validate:"notblank"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,nefield=OldPassword"`
}
