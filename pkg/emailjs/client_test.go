package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.EmailJSConfig {
	return config.EmailJSConfig{
		BaseURL:    baseURL,
		PublicKey:  "public-key",
		PrivateKey: "private-key",
		ServiceID:  "service_123",
		TemplateID: "template_abc",
		Timeout:    5 * time.Second,
	}
}

func TestInitRequiresIdentifiers(t *testing.T) {
	client := NewClient(config.EmailJSConfig{BaseURL: "http://unused"}, nil)
	require.ErrorIs(t, client.Init(context.Background()), ErrNotConfigured)
	assert.Equal(t, enums.CollaboratorFailed, client.State())

	err := client.Send(context.Background(), map[string]string{"email": "a@b.co"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendPostsTemplateParams(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, sendPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, client.Init(context.Background()))

	params := map[string]string{"contact_name": "Jane Doe", "estimated_total": "3,000"}
	require.NoError(t, client.Send(context.Background(), params))

	assert.Equal(t, "service_123", got.ServiceID)
	assert.Equal(t, "template_abc", got.TemplateID)
	assert.Equal(t, "public-key", got.UserID)
	assert.Equal(t, "private-key", got.AccessToken)
	assert.Equal(t, params, got.TemplateParams)
}

func TestSendErrorDiagnostics(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{status: http.StatusBadRequest, want: "template variables"},
		{status: http.StatusPaymentRequired, want: "plan limits"},
		{status: http.StatusUnprocessableEntity, want: "service configuration"},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("The template ID is invalid"))
			}))
			defer srv.Close()

			buf := &bytes.Buffer{}
			logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
			client := NewClient(testConfig(srv.URL), logg)
			require.NoError(t, client.Init(context.Background()))

			err := client.Send(context.Background(), map[string]string{})
			var sendErr *SendError
			require.True(t, errors.As(err, &sendErr))
			assert.Equal(t, tc.status, sendErr.Status)
			assert.Contains(t, sendErr.Diagnostic(), tc.want)
			assert.Contains(t, sendErr.Body, "template ID is invalid")
			assert.True(t, strings.Contains(buf.String(), tc.want), "expected diagnostic in log: %s", buf.String())
		})
	}
}

func TestSendErrorWithoutDiagnostic(t *testing.T) {
	err := &SendError{Status: http.StatusInternalServerError, Body: "boom"}
	assert.Empty(t, err.Diagnostic())
	assert.Contains(t, err.Error(), "status 500")
}
