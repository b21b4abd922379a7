package client

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/metrics"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/telemetry"
)

const userAgent = "Pulse-CLI/0.1.0"

var httpClient *resty.Client

// Init initializes the HTTP client from config and restores saved cookies
func Init() {
	timeout := time.Duration(config.GetInt("api.timeout")) * time.Second
	httpClient = New(config.GetString("api.base_url"), timeout)

	if config.GetString("telemetry.endpoint") != "" {
		httpClient.SetTransport(telemetry.WrapTransport(httpClient.GetClient().Transport))
	}

	restoreCookies()
}

// New builds a configured resty client. A zero timeout means none.
func New(baseURL string, timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetHeader("User-Agent", userAgent)
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal

	c.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.New().String())
		}
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL, "request_id", req.Header.Get("X-Request-ID"))
		return nil
	})

	c.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "duration", resp.Time())

		m := metrics.Get()
		m.HTTPRequestsTotal.WithLabelValues(resp.Request.Method, strconv.Itoa(resp.StatusCode())).Inc()
		m.HTTPRequestDuration.WithLabelValues(resp.Request.Method).Observe(resp.Time().Seconds())

		if len(resp.Cookies()) > 0 {
			persistCookies(c)
		}
		return nil
	})

	c.OnError(func(req *resty.Request, err error) {
		logger.Debug("HTTP Error", "method", req.Method, "url", req.URL, "error", err)
		metrics.Get().HTTPRequestsTotal.WithLabelValues(req.Method, "error").Inc()
	})

	return c
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetClient replaces the process client
func SetClient(c *resty.Client) {
	httpClient = c
}

// Reset drops the client so the next call rebuilds it from config
func Reset() {
	httpClient = nil
}

// Cookies returns the jar cookies scoped to the API base URL
func Cookies() []*http.Cookie {
	return cookiesFor(GetClient())
}

func cookiesFor(c *resty.Client) []*http.Cookie {
	jar := c.GetClient().Jar
	u, err := url.Parse(c.BaseURL)
	if jar == nil || err != nil {
		return nil
	}
	return jar.Cookies(u)
}

// SaveSession persists the user together with the current cookies
func SaveSession(user session.User) error {
	s := &session.Session{User: user, BaseURL: GetClient().BaseURL}
	s.SetCookies(Cookies())
	return session.Save(s)
}

// ClearSession drops cookies and the persisted session
func ClearSession() error {
	httpClient = nil
	return session.Delete()
}

func restoreCookies() {
	s, err := session.Load()
	if err != nil || s == nil {
		return
	}
	if s.BaseURL != "" && s.BaseURL != httpClient.BaseURL {
		logger.Debug("Ignoring session for a different API", "saved", s.BaseURL, "current", httpClient.BaseURL)
		return
	}
	u, err := url.Parse(httpClient.BaseURL)
	if err != nil {
		return
	}
	httpClient.GetClient().Jar.SetCookies(u, s.LiveCookies(time.Now()))
}

// persistCookies refreshes the cookies of an existing session
func persistCookies(c *resty.Client) {
	s, err := session.Load()
	if err != nil || s == nil {
		return
	}
	s.SetCookies(cookiesFor(c))
	if err := session.Save(s); err != nil {
		logger.Warn("Failed to persist session cookies", "error", err)
	}
}
