// Package emailjs sends templated order emails through the EmailJS REST API.
package emailjs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/go-resty/resty/v2"
)

const sendPath = "/api/v1.0/email/send"

var ErrNotConfigured = errors.New("emailjs public key, service id and template id are required")

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendError is returned when EmailJS answers with a non-2xx status.
type SendError struct {
	Status int
	Body   string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("emailjs send failed: status %d: %s", e.Status, e.Body)
}

func (e *SendError) UpstreamStatus() int {
	return e.Status
}

// Diagnostic explains the statuses EmailJS uses for account and template problems.
func (e *SendError) Diagnostic() string {
	switch e.Status {
	case http.StatusBadRequest:
		return "bad request: template variables may not match, the attachment may be too large, or the base64 payload is invalid"
	case http.StatusPaymentRequired:
		return "payment required: the EmailJS account has exceeded its plan limits"
	case http.StatusUnprocessableEntity:
		return "unprocessable: check the template and service configuration"
	default:
		return ""
	}
}

// Client is the email dispatch collaborator.
type Client struct {
	http *resty.Client
	cfg  config.EmailJSConfig
	logg *logger.Logger

	mu    sync.RWMutex
	state enums.CollaboratorState
}

func NewClient(cfg config.EmailJSConfig, logg *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{
		http:  httpClient,
		cfg:   cfg,
		logg:  logg,
		state: enums.CollaboratorUninitialized,
	}
}

func (c *Client) State() enums.CollaboratorState {
	if c == nil {
		return enums.CollaboratorUninitialized
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Init checks that every identifier needed to send is present. EmailJS has
// no handshake, so nothing goes over the wire.
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cfg.Configured() {
		c.state = enums.CollaboratorFailed
		return ErrNotConfigured
	}
	c.state = enums.CollaboratorReady
	if c.logg != nil {
		c.logg.Info(ctx, "emailjs client initialized")
	}
	return nil
}

// Send posts the flat template parameters to the configured template.
func (c *Client) Send(ctx context.Context, params map[string]string) error {
	if !c.State().IsReady() {
		return ErrNotConfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{
			ServiceID:      c.cfg.ServiceID,
			TemplateID:     c.cfg.TemplateID,
			UserID:         c.cfg.PublicKey,
			AccessToken:    c.cfg.PrivateKey,
			TemplateParams: params,
		}).
		Post(sendPath)
	if err != nil {
		return fmt.Errorf("emailjs request: %w", err)
	}
	if resp.IsError() {
		sendErr := &SendError{Status: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
		c.logFailure(ctx, sendErr)
		return sendErr
	}
	return nil
}

func (c *Client) logFailure(ctx context.Context, sendErr *SendError) {
	if c.logg == nil {
		return
	}
	fields := map[string]any{"status": sendErr.Status}
	if diag := sendErr.Diagnostic(); diag != "" {
		fields["diagnostic"] = diag
	}
	c.logg.Error(c.logg.WithFields(ctx, fields), "emailjs send failed", sendErr)
}
