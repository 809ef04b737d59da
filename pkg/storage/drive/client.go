package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const uploadFields = "id, name, webViewLink, webContentLink"

var errClientNotReady = errors.New("drive client not ready")

// filesAPI is the slice of the Drive v3 surface the uploader needs.
type filesAPI interface {
	about(ctx context.Context) error
	create(ctx context.Context, meta *drivev3.File, media io.Reader, contentType string) (*drivev3.File, error)
	shareWithAnyone(ctx context.Context, fileID string) error
}

// Client uploads logo attachments into a Drive folder and makes them
// readable by anyone holding the link.
type Client struct {
	files    filesAPI
	folderID string
	logg     *logger.Logger

	mu    sync.RWMutex
	state enums.CollaboratorState
}

var _ storage.Uploader = (*Client)(nil)

// NewClient creates the Drive service from the configured credentials.
// No request is made until Init.
func NewClient(ctx context.Context, cfg config.StorageConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	opts := append(clientOptions(gcp), option.WithScopes(drivev3.DriveFileScope))
	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return newClient(&serviceFiles{svc: svc}, cfg.DriveFolderID, logg), nil
}

func newClient(files filesAPI, folderID string, logg *logger.Logger) *Client {
	return &Client{
		files:    files,
		folderID: strings.TrimSpace(folderID),
		logg:     logg,
		state:    enums.CollaboratorUninitialized,
	}
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

func (c *Client) Provider() enums.StorageProvider {
	return enums.StorageProviderDrive
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

// Init performs the credential exchange by calling about.get; the client is
// only usable once this succeeds.
func (c *Client) Init(ctx context.Context) error {
	if c == nil || c.files == nil {
		return errClientNotReady
	}
	if err := c.files.about(ctx); err != nil {
		c.setState(enums.CollaboratorFailed)
		return fmt.Errorf("drive auth check failed: %w", describe(err))
	}
	c.setState(enums.CollaboratorReady)
	if c.logg != nil {
		c.logg.Info(ctx, "drive client initialized")
	}
	return nil
}

// Upload creates the file under the configured folder. Sharing is attempted
// afterwards and a failure there only produces a warning.
func (c *Client) Upload(ctx context.Context, obj storage.Object) (*storage.StoredFile, error) {
	if !c.State().IsReady() {
		return nil, errClientNotReady
	}
	if obj.Name == "" {
		return nil, errors.New("file name is required")
	}

	meta := &drivev3.File{
		Name:        obj.Name,
		MimeType:    obj.ContentType,
		Description: obj.Description,
	}
	if c.folderID != "" {
		meta.Parents = []string{c.folderID}
	}

	created, err := c.files.create(ctx, meta, bytes.NewReader(obj.Data), obj.ContentType)
	if err != nil {
		return nil, fmt.Errorf("drive upload: %w", describe(err))
	}

	if err := c.files.shareWithAnyone(ctx, created.Id); err != nil && c.logg != nil {
		warnCtx := c.logg.WithFields(ctx, map[string]any{"file_id": created.Id, "error": describe(err).Error()})
		c.logg.Warn(warnCtx, "drive: could not make file public")
	}

	return &storage.StoredFile{
		ID:           created.Id,
		Name:         created.Name,
		ViewLink:     created.WebViewLink,
		DownloadLink: created.WebContentLink,
	}, nil
}

func describe(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("permission denied (%d): %w", apiErr.Code, err)
		case http.StatusNotFound:
			return fmt.Errorf("folder or file not found: %w", err)
		}
	}
	return err
}

type serviceFiles struct {
	svc *drivev3.Service
}

func (s *serviceFiles) about(ctx context.Context) error {
	_, err := s.svc.About.Get().Fields("user").Context(ctx).Do()
	return err
}

func (s *serviceFiles) create(ctx context.Context, meta *drivev3.File, media io.Reader, contentType string) (*drivev3.File, error) {
	call := s.svc.Files.Create(meta).
		Fields(uploadFields).
		SupportsAllDrives(true).
		Context(ctx)
	if contentType != "" {
		call = call.Media(media, googleapi.ContentType(contentType))
	} else {
		call = call.Media(media)
	}
	return call.Do()
}

func (s *serviceFiles) shareWithAnyone(ctx context.Context, fileID string) error {
	_, err := s.svc.Permissions.Create(fileID, &drivev3.Permission{
		Type: "anyone",
		Role: "reader",
	}).SupportsAllDrives(true).Context(ctx).Do()
	return err
}
