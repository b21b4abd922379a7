package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/realtime"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
)

var validate = validator.New()

// currentUser returns the logged in user
func currentUser() (session.User, error) {
	u := session.Current()
	if u.UserID == 0 {
		return u, clierrors.AuthError("Not logged in").WithSuggestion("Run 'pulse auth login' first.")
	}
	return u, nil
}

// connectRealtime opens a realtime connection authenticated with the
// session cookies. The caller closes it.
func connectRealtime(ctx context.Context) (*realtime.Manager, error) {
	m := realtime.NewManager(realtime.ConfigFromSettings(client.Cookies()))
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// validationError turns the first validator failure into a CLI error
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	reason := "is invalid"
	switch fe.Tag() {
	case "required", "required_if":
		reason = "is required"
	case "min":
		reason = "must be at least " + fe.Param() + " characters"
	case "eq":
		reason = "must be " + fe.Param()
	case "file":
		reason = "must be an existing file"
	case "latitude", "longitude":
		reason = "must be a valid " + fe.Tag()
	}
	return clierrors.ValidationError(strings.ToLower(fe.Field()), reason)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
