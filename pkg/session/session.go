package session

import (
	"net/http"
	"os"
	"strconv"
	"time"

	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
)

// User mirrors the identity returned at login. It is used for display and
// optimistic decisions only; the server authorizes every action.
type User struct {
	UserID            int64  `json:"user_id"`
	Username          string `json:"username"`
	Email             string `json:"email,omitempty"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// IDString returns the user id in the form used by realtime event names
func (u User) IDString() string {
	return strconv.FormatInt(u.UserID, 10)
}

// Cookie is the persisted form of an auth cookie
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// Session is the authenticated state persisted between commands
type Session struct {
	User    User      `json:"user"`
	BaseURL string    `json:"base_url"`
	Cookies []Cookie  `json:"cookies"`
	SavedAt time.Time `json:"saved_at"`
}

// Load loads the session from disk, returning nil when none exists
func Load() (*Session, error) {
	data, err := os.ReadFile(config.GetSessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the session to disk (owner read/write only)
func Save(s *Session) error {
	s.SavedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(config.GetSessionPath(), data, 0600)
}

// Delete removes the persisted session
func Delete() error {
	err := os.Remove(config.GetSessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsAuthenticated reports whether the session has an identity and live cookies
func (s *Session) IsAuthenticated() bool {
	if s == nil || s.User.UserID == 0 {
		return false
	}
	return len(s.LiveCookies(time.Now())) > 0
}

// LiveCookies returns the cookies that have not expired at now
func (s *Session) LiveCookies(now time.Time) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if !c.Expires.IsZero() && now.After(c.Expires) {
			continue
		}
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return out
}

// SetCookies replaces the persisted cookies
func (s *Session) SetCookies(cookies []*http.Cookie) {
	s.Cookies = s.Cookies[:0]
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
}

// Current loads the session and returns its user, or a zero User
func Current() User {
	s, err := Load()
	if err != nil || s == nil {
		return User{}
	}
	return s.User
}
