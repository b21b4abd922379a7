package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
)

// AuthService handles login state
type AuthService struct{}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login authenticates and persists the session. Missing credentials are
// prompted for.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	if current := session.Current(); current.UserID != 0 {
		formatter.PrintWarning("Already logged in as @%s", current.Username)
		confirm, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	var err error
	if email == "" {
		if email, err = prompter.PromptString("Email: "); err != nil {
			return err
		}
	}
	if email == "" {
		return clierrors.ValidationError("email", "cannot be empty")
	}
	if password == "" {
		if password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}
	}
	if password == "" {
		return clierrors.ValidationError("password", "cannot be empty")
	}

	formatter.PrintInfo("Authenticating...")
	data, err := api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	user := session.User{
		UserID:            data.UserID,
		Username:          data.Username,
		Email:             data.Email,
		FirstName:         data.FirstName,
		LastName:          data.LastName,
		ProfilePictureURL: data.ProfilePictureURL,
	}
	if err := client.SaveSession(user); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	formatter.PrintSuccess("Logged in as @%s", user.Username)
	return nil
}

// Logout ends the session locally and on the server
func (s *AuthService) Logout(ctx context.Context) error {
	if err := api.Logout(ctx); err != nil {
		logger.Warn("Server logout failed", "error", err)
	}
	if err := client.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := handoff.Clear(); err != nil {
		logger.Warn("Failed to clear handoff state", "error", err)
	}

	formatter.PrintSuccess("Logged out")
	return nil
}

// Status reports whether the server still accepts the session
func (s *AuthService) Status(ctx context.Context) error {
	local := session.Current()
	status, err := api.CheckAuthentication(ctx)
	if err != nil {
		return err
	}

	return output.PrintRecord("Session", map[string]interface{}{
		"authenticated": status.Authenticated,
		"user_id":       local.UserID,
		"username":      local.Username,
		"api":           client.GetClient().BaseURL,
	})
}

// Registration holds the sign-up fields. Missing names and the password
// are prompted for.
type Registration struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	HomeLocation string
	AcceptTerms  bool
}

// Register creates an account. The server mails a verification link that
// must be confirmed before logging in.
func (s *AuthService) Register(ctx context.Context, reg Registration) error {
	var err error
	fields := []struct {
		value *string
		label string
	}{
		{&reg.FirstName, "First name: "},
		{&reg.LastName, "Last name: "},
		{&reg.Username, "Username: "},
		{&reg.Email, "Email or phone number: "},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value != "" {
			continue
		}
		if *f.value, err = prompter.PromptRequired(f.label); err != nil {
			return err
		}
	}
	reg.Username = strings.TrimPrefix(reg.Username, "@")

	password, _, err := promptNewPassword()
	if err != nil {
		return err
	}

	if !reg.AcceptTerms {
		if reg.AcceptTerms, err = prompter.PromptConfirm("Do you accept the Seattle Pulse terms and conditions?"); err != nil {
			return err
		}
	}
	if !reg.AcceptTerms {
		return clierrors.ValidationError("terms", "must be accepted to create an account")
	}

	req := api.RegisterRequest{
		FirstName:     reg.FirstName,
		LastName:      reg.LastName,
		Username:      reg.Username,
		EmailOrPhone:  reg.Email,
		Password:      password,
		AcceptedTerms: true,
		HomeLocation:  strings.TrimSpace(reg.HomeLocation),
	}
	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	formatter.PrintInfo("Creating account...")
	created, err := api.Register(ctx, req)
	if err != nil {
		return err
	}

	formatter.PrintSuccess("Account @%s created", created.Username)
	formatter.PrintInfo("Check %s for a verification link, then run 'pulse auth verify <token>'.", reg.Email)
	return nil
}

// Verify confirms an account with the emailed token
func (s *AuthService) Verify(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return clierrors.ValidationError("token", "cannot be empty")
	}
	if _, err := api.VerifyAccount(ctx, token); err != nil {
		return err
	}
	formatter.PrintSuccess("Account verified. You can now run 'pulse auth login'.")
	return nil
}

// ResendVerification asks for a new verification email
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email, err := promptEmail(email)
	if err != nil {
		return err
	}
	if _, err := api.ResendVerification(ctx, email); err != nil {
		return err
	}
	formatter.PrintSuccess("Verification email sent to %s", email)
	return nil
}

// RequestPasswordReset mails a reset link
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := promptEmail(email)
	if err != nil {
		return err
	}
	if _, err := api.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	formatter.PrintSuccess("If %s has an account, a reset link is on its way.", email)
	formatter.PrintInfo("Finish with 'pulse auth reset-password --token <token>'.")
	return nil
}

// ResetPassword sets a new password with the emailed token
func (s *AuthService) ResetPassword(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return clierrors.ValidationError("token", "cannot be empty")
	}
	pw, confirm, err := promptNewPassword()
	if err != nil {
		return err
	}
	if _, err := api.ResetPassword(ctx, token, pw, confirm); err != nil {
		return err
	}
	formatter.PrintSuccess("Password reset. You can now run 'pulse auth login'.")
	return nil
}

func promptEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		return email, nil
	}
	return prompter.PromptRequired("Email: ")
}
