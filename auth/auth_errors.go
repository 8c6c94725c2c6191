package auth

import "errors"

var (
	ErrDuplicateEmail       = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountLocked        = errors.New("account is locked out")
	ErrAccountDeactivated   = errors.New("account is deactivated")
	ErrInvalidAccessToken   = errors.New("invalid access token")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidResetToken    = errors.New("invalid reset token")
	ErrInvalidConfirmToken  = errors.New("invalid confirmation token")
	ErrEmailConfirmed       = errors.New("email already confirmed")
	ErrInvalidCurrentPasswd = errors.New("current password is incorrect")
	ErrInternal             = errors.New("something went wrong")
)
