package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/docuflow/go-auth-service/credentials"
	apperrors "github.com/docuflow/go-auth-service/internal/errors"
)

// ChangePassword verifies the current password and replaces it. It has no
// token or session side effects.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return s.unexpected("change_password", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.credentials.ChangePassword(user, currentPassword, newPassword); err != nil {
		if errors.Is(err, credentials.ErrPasswordMismatch) {
			return ErrInvalidCurrentPasswd
		}
		var validation *apperrors.ValidationError
		if errors.As(err, &validation) {
			return err
		}
		return s.unexpected("change_password", err)
	}

	user.UpdatedAt = s.nowFunc()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return s.unexpected("change_password", err)
	}
	return nil
}

// ForgotPassword issues a reset token and hands it to the mailer. It reports
// success even for unknown emails so callers cannot probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.repos.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return s.unexpected("forgot_password", err)
	}
	if user == nil {
		return nil
	}

	resetToken, err := s.credentials.IssueResetToken(user)
	if err != nil {
		return s.unexpected("forgot_password", err)
	}
	user.UpdatedAt = s.nowFunc()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return s.unexpected("forgot_password", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetToken); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("reset email not sent")
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, emailAddr, resetToken, newPassword string) error {
	user, err := s.repos.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return s.unexpected("reset_password", err)
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	if err := s.credentials.ResetPassword(user, resetToken, newPassword); err != nil {
		if errors.Is(err, credentials.ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		var validation *apperrors.ValidationError
		if errors.As(err, &validation) {
			return err
		}
		return s.unexpected("reset_password", err)
	}

	user.UpdatedAt = s.nowFunc()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return s.unexpected("reset_password", err)
	}
	return nil
}

// ConfirmEmail consumes a confirmation token and marks the email confirmed.
func (s *Service) ConfirmEmail(ctx context.Context, emailAddr, confirmToken string) error {
	user, err := s.repos.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return s.unexpected("confirm_email", err)
	}
	if user == nil {
		return ErrInvalidConfirmToken
	}

	if err := s.credentials.ConfirmEmail(user, confirmToken); err != nil {
		if errors.Is(err, credentials.ErrAlreadyConfirmed) {
			return ErrEmailConfirmed
		}
		return ErrInvalidConfirmToken
	}

	user.UpdatedAt = s.nowFunc()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return s.unexpected("confirm_email", err)
	}
	return nil
}

// ResendConfirmation issues a fresh confirmation token for an unconfirmed
// account.
func (s *Service) ResendConfirmation(ctx context.Context, emailAddr string) error {
	user, err := s.repos.Users.GetByEmail(ctx, emailAddr)
	if err != nil {
		return s.unexpected("resend_confirmation", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	confirmToken, err := s.credentials.IssueConfirmToken(user)
	if err != nil {
		if errors.Is(err, credentials.ErrAlreadyConfirmed) {
			return ErrEmailConfirmed
		}
		return s.unexpected("resend_confirmation", err)
	}

	user.UpdatedAt = s.nowFunc()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return s.unexpected("resend_confirmation", err)
	}

	if err := s.mailer.SendEmailConfirmation(ctx, user.Email, confirmToken); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("confirmation email not sent")
	}
	return nil
}

// CurrentUser returns the profile for userID.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.unexpected("current_user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return userInfo(user), nil
}

// UpdateUser changes the user's name fields.
func (s *Service) UpdateUser(ctx context.Context, userID, firstName, lastName string) (*UserInfo, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.unexpected("update_user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.UpdatedAt = s.nowFunc()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, s.unexpected("update_user", err)
	}
	return userInfo(user), nil
}
