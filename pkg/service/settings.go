package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/upload"
)

// SettingsService manages the viewer's account and local CLI settings
type SettingsService struct{}

// NewSettingsService creates a new settings service
func NewSettingsService() *SettingsService {
	return &SettingsService{}
}

// ProfileChanges are the profile fields to update. Empty fields are kept.
type ProfileChanges struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Bio          string
	HomeLocation string
	PicturePath  string
}

// EditProfile updates the viewer's profile and refreshes the saved session
func (s *SettingsService) EditProfile(ctx context.Context, changes ProfileChanges) error {
	me, err := currentUser()
	if err != nil {
		return err
	}

	edit := api.ProfileEdit{
		FirstName:    strings.TrimSpace(changes.FirstName),
		LastName:     strings.TrimSpace(changes.LastName),
		Username:     strings.TrimPrefix(strings.TrimSpace(changes.Username), "@"),
		Email:        strings.TrimSpace(changes.Email),
		Bio:          strings.TrimSpace(changes.Bio),
		HomeLocation: strings.TrimSpace(changes.HomeLocation),
	}
	if changes.PicturePath != "" {
		f, err := upload.ReadFile(changes.PicturePath)
		if err != nil {
			return err
		}
		contentType := mimetype.Detect(f.Data).String()
		if !strings.HasPrefix(contentType, "image/") || !upload.IsAllowedType(contentType) {
			return clierrors.UploadFormatError(contentType).WithSuggestion("Profile pictures must be images.")
		}
		edit.PictureName = f.Name
		edit.PictureType = contentType
		edit.Picture = bytes.NewReader(f.Data)
	}
	if edit.Empty() {
		return clierrors.ValidationError("profile", "nothing to change").
			WithSuggestion("Pass at least one flag, e.g. --bio or --picture.")
	}

	user, err := api.EditProfile(ctx, edit)
	if err != nil {
		return err
	}

	if user.Username != "" {
		me.Username = user.Username
	}
	if user.FirstName != "" {
		me.FirstName = user.FirstName
	}
	if user.LastName != "" {
		me.LastName = user.LastName
	}
	if user.Email != "" {
		me.Email = user.Email
	}
	if user.ProfilePictureURL != nil {
		me.ProfilePictureURL = *user.ProfilePictureURL
	}
	if err := client.SaveSession(me); err != nil {
		logger.Warn("Failed to refresh session", "error", err)
	}

	formatter.PrintSuccess("Profile updated for @%s", me.Username)
	return nil
}

// UpdateCredentials changes the account email, password or both. The
// password fields are prompted for when changePassword is set.
func (s *SettingsService) UpdateCredentials(ctx context.Context, email string, changePassword bool) error {
	me, err := currentUser()
	if err != nil {
		return err
	}

	req := api.CredentialsRequest{UserID: me.UserID, Email: strings.TrimSpace(email)}
	if changePassword {
		if req.OldPassword, err = prompter.PromptPassword("Current password: "); err != nil {
			return err
		}
		if req.NewPassword, req.ConfirmNewPassword, err = promptNewPassword(); err != nil {
			return err
		}
	}
	if req.Email == "" && !req.ChangesPassword() {
		return clierrors.ValidationError("credentials", "provide an email or all password fields").
			WithSuggestion("Use --email, --password or both.")
	}

	ack, err := api.UpdateCredentials(ctx, req)
	if err != nil {
		return err
	}

	if req.Email != "" {
		me.Email = req.Email
		if err := client.SaveSession(me); err != nil {
			logger.Warn("Failed to refresh session", "error", err)
		}
	}

	msg := ack.Message
	if msg == "" {
		msg = "Credentials updated"
	}
	formatter.PrintSuccess("%s", msg)
	return nil
}

// SetHomeLocationVisible shows or hides the home location on the profile
func (s *SettingsService) SetHomeLocationVisible(ctx context.Context, show bool) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	shown, err := api.SetHomeLocationVisible(ctx, show)
	if err != nil {
		return err
	}
	if shown {
		formatter.PrintSuccess("Home location is now shown on your profile")
	} else {
		formatter.PrintSuccess("Home location is now hidden from your profile")
	}
	return nil
}

// DeleteAccount permanently deletes the account and ends the local session
func (s *SettingsService) DeleteAccount(ctx context.Context, reason, comments string, force bool) error {
	me, err := currentUser()
	if err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		if reason, err = prompter.PromptRequired("Reason for leaving: "); err != nil {
			return err
		}
	}

	if !force {
		formatter.PrintWarning("This permanently deletes @%s and everything you posted.", me.Username)
		ok, err := prompter.PromptConfirm("Delete your account?")
		if err != nil {
			return err
		}
		if !ok {
			formatter.PrintInfo("Cancelled")
			return nil
		}
	}

	err = api.DeleteAccount(ctx, api.DeleteAccountRequest{
		Username: me.Username,
		Email:    me.Email,
		Reason:   reason,
		Comments: strings.TrimSpace(comments),
	})
	if err != nil {
		return validationError(err)
	}

	if err := client.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if err := handoff.Clear(); err != nil {
		logger.Warn("Failed to clear handoff state", "error", err)
	}

	formatter.PrintSuccess("Account @%s deleted", me.Username)
	return nil
}

// Set persists a CLI setting to the user config file
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !config.Known(key) {
		return clierrors.ValidationError("key", fmt.Sprintf("unknown setting %q", key)).
			WithSuggestion("Run 'pulse settings get' to list settings.")
	}
	if key == "output.format" && !output.ValidateOutputFormat(value) {
		return clierrors.ValidationError("output.format", "must be text, json or table")
	}
	if err := config.SetString(key, value); err != nil {
		return err
	}
	formatter.PrintSuccess("%s = %s", key, value)
	return nil
}

// Get prints one CLI setting, or all of them when key is empty
func (s *SettingsService) Get(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		all := map[string]interface{}{}
		for _, k := range config.Keys() {
			all[k] = config.GetString(k)
		}
		formatter.PrintKeyValue(all)
		return nil
	}

	if !config.Known(key) {
		return clierrors.ValidationError("key", fmt.Sprintf("unknown setting %q", key))
	}
	formatter.PrintKeyValue(map[string]interface{}{key: config.GetString(key)})
	return nil
}

// promptNewPassword asks for a new password twice
func promptNewPassword() (string, string, error) {
	pw, err := prompter.PromptPassword("New password: ")
	if err != nil {
		return "", "", err
	}
	confirm, err := prompter.PromptPassword("Confirm new password: ")
	if err != nil {
		return "", "", err
	}
	if pw == "" {
		return "", "", clierrors.ValidationError("password", "cannot be empty")
	}
	if pw != confirm {
		return "", "", clierrors.ValidationError("password", "passwords do not match")
	}
	return pw, confirm, nil
}
