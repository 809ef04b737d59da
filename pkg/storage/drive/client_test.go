package drive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
	"github.com/rs/zerolog"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

type fakeFiles struct {
	aboutErr  error
	createErr error
	shareErr  error

	created   *drivev3.File
	gotMeta   *drivev3.File
	gotBody   []byte
	gotType   string
	sharedIDs []string
}

func (f *fakeFiles) about(context.Context) error {
	return f.aboutErr
}

func (f *fakeFiles) create(_ context.Context, meta *drivev3.File, media io.Reader, contentType string) (*drivev3.File, error) {
	f.gotMeta = meta
	f.gotType = contentType
	f.gotBody, _ = io.ReadAll(media)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeFiles) shareWithAnyone(_ context.Context, fileID string) error {
	f.sharedIDs = append(f.sharedIDs, fileID)
	return f.shareErr
}

func readyClient(t *testing.T, files *fakeFiles, logg *logger.Logger) *Client {
	t.Helper()
	client := newClient(files, "folder-123", logg)
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return client
}

func TestInitStates(t *testing.T) {
	client := newClient(&fakeFiles{}, "folder", nil)
	if client.State() != enums.CollaboratorUninitialized {
		t.Fatalf("expected uninitialized, got %s", client.State())
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if client.State() != enums.CollaboratorReady {
		t.Fatalf("expected ready, got %s", client.State())
	}

	failing := newClient(&fakeFiles{aboutErr: &googleapi.Error{Code: http.StatusUnauthorized}}, "folder", nil)
	err := failing.Init(context.Background())
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected permission error, got %v", err)
	}
	if failing.State() != enums.CollaboratorFailed {
		t.Fatalf("expected failed, got %s", failing.State())
	}
}

func TestUploadBeforeInitFails(t *testing.T) {
	client := newClient(&fakeFiles{}, "folder", nil)
	if _, err := client.Upload(context.Background(), storage.Object{Name: "logo.png"}); !errors.Is(err, errClientNotReady) {
		t.Fatalf("expected not ready error, got %v", err)
	}
}

func TestUploadSharesAndReturnsLinks(t *testing.T) {
	files := &fakeFiles{created: &drivev3.File{
		Id:             "file-1",
		Name:           "20240101T120000_Jane_Gala_logo.png",
		WebViewLink:    "https://drive.google.com/file/d/file-1/view",
		WebContentLink: "https://drive.google.com/uc?id=file-1",
	}}
	client := readyClient(t, files, nil)

	stored, err := client.Upload(context.Background(), storage.Object{
		Name:        "20240101T120000_Jane_Gala_logo.png",
		ContentType: "image/png",
		Description: "Logo upload for Jane - Gala (1/1/2024)",
		Data:        []byte("png"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if stored.ViewLink != "https://drive.google.com/file/d/file-1/view" {
		t.Fatalf("unexpected view link %s", stored.ViewLink)
	}
	if len(files.gotMeta.Parents) != 1 || files.gotMeta.Parents[0] != "folder-123" {
		t.Fatalf("expected folder parent, got %v", files.gotMeta.Parents)
	}
	if files.gotMeta.Description != "Logo upload for Jane - Gala (1/1/2024)" {
		t.Fatalf("unexpected description %q", files.gotMeta.Description)
	}
	if files.gotType != "image/png" || string(files.gotBody) != "png" {
		t.Fatalf("unexpected media %q %q", files.gotType, files.gotBody)
	}
	if len(files.sharedIDs) != 1 || files.sharedIDs[0] != "file-1" {
		t.Fatalf("expected share call, got %v", files.sharedIDs)
	}
}

func TestUploadShareFailureOnlyWarns(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
	files := &fakeFiles{
		created:  &drivev3.File{Id: "file-2", Name: "logo.pdf", WebViewLink: "https://drive.google.com/file/d/file-2/view"},
		shareErr: errors.New("sharing disabled by admin"),
	}
	client := readyClient(t, files, logg)

	stored, err := client.Upload(context.Background(), storage.Object{Name: "logo.pdf", ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("share failure must not fail upload: %v", err)
	}
	if stored.ID != "file-2" {
		t.Fatalf("unexpected id %s", stored.ID)
	}
	if !strings.Contains(buf.String(), "could not make file public") {
		t.Fatalf("expected warning log, got %s", buf.String())
	}
}

func TestUploadCreateError(t *testing.T) {
	client := readyClient(t, &fakeFiles{createErr: &googleapi.Error{Code: http.StatusNotFound, Message: "folder missing"}}, nil)

	_, err := client.Upload(context.Background(), storage.Object{Name: "logo.png"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}
