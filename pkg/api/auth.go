package api

import (
	"context"
	"fmt"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginData is the identity returned on a successful login
type LoginData struct {
	UserID            int64  `json:"user_id"`
	Token             string `json:"token"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// AuthStatus is the result of GET /auth/is_authenticated
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
}

// Login authenticates with email and password. The session cookie lands
// in the client's jar.
func Login(ctx context.Context, email, password string) (*LoginData, error) {
	logger.Debug("Logging in", "email", email)

	var resp envelope[LoginData]
	if err := client.Post(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	if resp.Data.UserID == 0 {
		return nil, fmt.Errorf("failed to log in: no user in response")
	}
	return &resp.Data, nil
}

// Logout ends the server session
func Logout(ctx context.Context) error {
	logger.Debug("Logging out")

	if err := client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// CheckAuthentication asks the server whether the session is valid
func CheckAuthentication(ctx context.Context) (*AuthStatus, error) {
	logger.Debug("Checking authentication")

	var resp envelope[AuthStatus]
	if err := client.Get(ctx, "/auth/is_authenticated", &resp); err != nil {
		return nil, fmt.Errorf("failed to check authentication: %w", err)
	}

	if resp.Status != "success" {
		return &AuthStatus{}, nil
	}
	return &resp.Data, nil
}
