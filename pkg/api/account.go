package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// RegisterRequest is the body of POST /auth/register. EmailOrPhone takes
// either an email address or a phone number.
type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Username      string `json:"username" validate:"required"`
	EmailOrPhone  string `json:"emailOrPhoneNumber" validate:"required"`
	Password      string `json:"password" validate:"required,min=8"`
	AcceptedTerms bool   `json:"accepted_terms_and_conditions" validate:"eq=true"`
	HomeLocation  string `json:"home_location,omitempty"`
}

// Registration is the account created by Register
type Registration struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	EmailOrPhone string `json:"emailOrPhoneNumber"`
}

// Register creates an account. The server mails a verification link.
func Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	logger.Debug("Registering account", "username", req.Username)

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	var resp envelope[Registration]
	if err := client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return &resp.Data, nil
}

// VerifyAccount confirms an account with the token from the verification email
func VerifyAccount(ctx context.Context, token string) (*Ack, error) {
	logger.Debug("Verifying account")

	var resp Ack
	if err := client.Post(ctx, "/auth/verify-account", map[string]string{"token": token}, &resp); err != nil {
		return nil, fmt.Errorf("failed to verify account: %w", err)
	}
	return &resp, nil
}

// ResendVerification asks for a new verification email
func ResendVerification(ctx context.Context, email string) (*Ack, error) {
	logger.Debug("Resending verification email", "email", email)

	var resp Ack
	if err := client.Post(ctx, "/auth/resend-email-verification", map[string]string{"email": email}, &resp); err != nil {
		return nil, fmt.Errorf("failed to resend verification: %w", err)
	}
	return &resp, nil
}

// RequestPasswordReset mails a password reset link
func RequestPasswordReset(ctx context.Context, email string) (*Ack, error) {
	logger.Debug("Requesting password reset", "email", email)

	var resp Ack
	if err := client.Post(ctx, "/auth/reset_password_request", map[string]string{"email": email}, &resp); err != nil {
		return nil, fmt.Errorf("failed to request password reset: %w", err)
	}
	return &resp, nil
}

// ResetPassword sets a new password with the token from the reset email
func ResetPassword(ctx context.Context, token, password, confirm string) (*Ack, error) {
	logger.Debug("Resetting password")

	body := map[string]string{"password": password, "confirm_password": confirm}
	var resp Ack
	if err := client.Post(ctx, "/auth/reset_password?token="+url.QueryEscape(token), body, &resp); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	return &resp, nil
}

// CredentialsRequest is the body of PATCH /auth/update_password_and_email.
// Empty fields are left out.
type CredentialsRequest struct {
	UserID             int64  `json:"user_id"`
	Email              string `json:"email,omitempty"`
	OldPassword        string `json:"old_password,omitempty"`
	NewPassword        string `json:"new_password,omitempty"`
	ConfirmNewPassword string `json:"confirm_new_password,omitempty"`
}

// ErrNoCredentialChange is returned when neither an email nor a full set of
// password fields is given
var ErrNoCredentialChange = errors.New("Provide at least an email or all password fields.")

// ChangesPassword reports whether all three password fields are set
func (r CredentialsRequest) ChangesPassword() bool {
	return r.OldPassword != "" && r.NewPassword != "" && r.ConfirmNewPassword != ""
}

// UpdateCredentials changes the account email, password or both
func UpdateCredentials(ctx context.Context, req CredentialsRequest) (*Ack, error) {
	if strings.TrimSpace(req.Email) == "" && !req.ChangesPassword() {
		return nil, ErrNoCredentialChange
	}
	logger.Debug("Updating credentials", "user_id", req.UserID, "email", req.Email != "", "password", req.ChangesPassword())

	var resp Ack
	if err := client.Patch(ctx, "/auth/update_password_and_email", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to update credentials: %w", err)
	}
	return &resp, nil
}

// ProfileEdit is the multipart body of PATCH /profile/edit_profile. Empty
// fields are not sent.
type ProfileEdit struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Bio          string
	HomeLocation string

	PictureName string
	PictureType string
	Picture     io.Reader
}

// Empty reports whether the edit changes nothing
func (e ProfileEdit) Empty() bool {
	return e.FirstName == "" && e.LastName == "" && e.Username == "" && e.Email == "" &&
		e.Bio == "" && e.HomeLocation == "" && e.Picture == nil
}

func (e ProfileEdit) form() *client.Form {
	fields := map[string]string{}
	set := func(name, value string) {
		if value != "" {
			fields[name] = value
		}
	}
	set("first_name", e.FirstName)
	set("last_name", e.LastName)
	set("username", e.Username)
	set("email", e.Email)
	set("bio", e.Bio)
	set("location", e.HomeLocation)

	f := &client.Form{Fields: fields}
	if e.Picture != nil {
		f.Files = append(f.Files, client.FormFile{
			Field:       "profile_picture",
			FileName:    e.PictureName,
			ContentType: e.PictureType,
			Reader:      e.Picture,
		})
	}
	return f
}

// EditProfile updates the viewer's profile and returns the stored user
func EditProfile(ctx context.Context, edit ProfileEdit) (*ProfileUser, error) {
	logger.Debug("Editing profile", "picture", edit.Picture != nil)

	var resp struct {
		Status  string      `json:"status"`
		Message string      `json:"message"`
		User    ProfileUser `json:"user"`
	}
	if err := client.Patch(ctx, "/profile/edit_profile", edit.form(), &resp); err != nil {
		return nil, fmt.Errorf("failed to edit profile: %w", err)
	}
	return &resp.User, nil
}

// SetHomeLocationVisible shows or hides the home location on the viewer's
// profile and returns the stored setting
func SetHomeLocationVisible(ctx context.Context, show bool) (bool, error) {
	logger.Debug("Toggling home location", "show", show)

	var resp envelope[*struct {
		ShowHomeLocation bool `json:"show_home_location"`
	}]
	body := map[string]bool{"show_home_location": show}
	if err := client.Patch(ctx, "/profile/toggle-home-location", body, &resp); err != nil {
		return false, fmt.Errorf("failed to update home location visibility: %w", err)
	}
	if resp.Data == nil {
		return show, nil
	}
	return resp.Data.ShowHomeLocation, nil
}

// DeleteAccountRequest is the body of DELETE /profile/delete_user
type DeleteAccountRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Reason   string `json:"reason" validate:"required"`
	Comments string `json:"comments,omitempty"`
}

// DeleteAccount permanently deletes the viewer's account
func DeleteAccount(ctx context.Context, req DeleteAccountRequest) error {
	logger.Debug("Deleting account", "username", req.Username)

	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid account deletion: %w", err)
	}
	if err := client.Delete(ctx, "/profile/delete_user", req, nil); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
