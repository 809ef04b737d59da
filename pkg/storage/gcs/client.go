package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

const (
	publicBase   = "https://storage.googleapis.com"
	objectFields = "id,name,mediaLink"
	cacheControl = "private, max-age=0"
)

var errClientNotReady = errors.New("gcs client not ready")

// objectsAPI is the slice of the JSON API the uploader calls.
type objectsAPI interface {
	bucket(ctx context.Context, name string) error
	insert(ctx context.Context, bucket string, obj *storagev1.Object, media io.Reader) (*storagev1.Object, error)
}

// Client uploads logo attachments into a GCS bucket. Objects stay private
// to the bucket's own access rules; the view link assumes the bucket is
// published or fronted by the team.
type Client struct {
	objects objectsAPI
	bucket  string
	timeout time.Duration
	logg    *logger.Logger

	mu    sync.RWMutex
	state enums.CollaboratorState
}

var _ storage.Uploader = (*Client)(nil)

// NewClient builds the storage service from the configured credentials,
// falling back to application default credentials. Nothing is sent until Init.
func NewClient(ctx context.Context, cfg config.StorageConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	bucket := strings.TrimSpace(cfg.GCSBucket)
	if bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	opts := append(clientOptions(gcp), option.WithScopes(storagev1.DevstorageReadWriteScope))
	svc, err := storagev1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}
	client := newClient(&serviceObjects{svc: svc}, bucket, logg)
	client.timeout = cfg.Timeout
	return client, nil
}

func newClient(objects objectsAPI, bucket string, logg *logger.Logger) *Client {
	return &Client{
		objects: objects,
		bucket:  bucket,
		logg:    logg,
		state:   enums.CollaboratorUninitialized,
	}
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

func (c *Client) Provider() enums.StorageProvider {
	return enums.StorageProviderGCS
}

func (c *Client) State() enums.CollaboratorState {
	if c == nil {
		return enums.CollaboratorUninitialized
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(state enums.CollaboratorState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Init reads the bucket metadata, which exercises the credentials and the
// bucket name in one call.
func (c *Client) Init(ctx context.Context) error {
	if c == nil || c.objects == nil {
		return errClientNotReady
	}
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.objects.bucket(callCtx, c.bucket); err != nil {
		c.setState(enums.CollaboratorFailed)
		return fmt.Errorf("gcs bucket check failed: %w", describe(err))
	}
	c.setState(enums.CollaboratorReady)
	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "bucket", c.bucket), "gcs client initialized")
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, obj storage.Object) (*storage.StoredFile, error) {
	if !c.State().IsReady() {
		return nil, errClientNotReady
	}
	if obj.Name == "" {
		return nil, errors.New("object name is required")
	}

	meta := &storagev1.Object{
		Name:         obj.Name,
		ContentType:  obj.ContentType,
		CacheControl: cacheControl,
	}
	if obj.Description != "" {
		meta.Metadata = map[string]string{"description": obj.Description}
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	created, err := c.objects.insert(callCtx, c.bucket, meta, bytes.NewReader(obj.Data))
	if err != nil {
		return nil, fmt.Errorf("gcs upload: %w", describe(err))
	}
	name := created.Name
	if name == "" {
		name = obj.Name
	}
	return &storage.StoredFile{
		ID:           created.Id,
		Name:         name,
		ViewLink:     publicURL(c.bucket, name),
		DownloadLink: created.MediaLink,
	}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func publicURL(bucket, name string) string {
	return fmt.Sprintf("%s/%s/%s", publicBase, url.PathEscape(bucket), url.PathEscape(name))
}

func describe(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("permission denied (%d): %w", apiErr.Code, err)
		case http.StatusNotFound:
			return fmt.Errorf("bucket not found: %w", err)
		}
	}
	return err
}

type serviceObjects struct {
	svc *storagev1.Service
}

func (s *serviceObjects) bucket(ctx context.Context, name string) error {
	_, err := s.svc.Buckets.Get(name).Fields("name").Context(ctx).Do()
	return err
}

func (s *serviceObjects) insert(ctx context.Context, bucket string, obj *storagev1.Object, media io.Reader) (*storagev1.Object, error) {
	call := s.svc.Objects.Insert(bucket, obj).Fields(objectFields).Context(ctx)
	if obj.ContentType != "" {
		call = call.Media(media, googleapi.ContentType(obj.ContentType))
	} else {
		call = call.Media(media)
	}
	return call.Do()
}
