package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/customorder-backend/pkg/config"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

type fakeObjects struct {
	bucketErr error
	insertErr error
	created   *storagev1.Object

	gotBucket string
	gotMeta   *storagev1.Object
	gotBody   []byte
}

func (f *fakeObjects) bucket(_ context.Context, name string) error {
	f.gotBucket = name
	return f.bucketErr
}

func (f *fakeObjects) insert(_ context.Context, bucket string, obj *storagev1.Object, media io.Reader) (*storagev1.Object, error) {
	f.gotBucket = bucket
	f.gotMeta = obj
	f.gotBody, _ = io.ReadAll(media)
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return f.created, nil
}

func TestInitMarksReady(t *testing.T) {
	t.Parallel()

	objects := &fakeObjects{}
	client := newClient(objects, "logos", nil)
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if client.State() != enums.CollaboratorReady {
		t.Fatalf("expected ready, got %s", client.State())
	}
	if objects.gotBucket != "logos" {
		t.Fatalf("expected bucket check on logos, got %q", objects.gotBucket)
	}
}

func TestInitFailureMarksFailed(t *testing.T) {
	t.Parallel()

	client := newClient(&fakeObjects{bucketErr: &googleapi.Error{Code: http.StatusForbidden}}, "logos", nil)
	err := client.Init(context.Background())
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected permission error, got %v", err)
	}
	if client.State() != enums.CollaboratorFailed {
		t.Fatalf("expected failed, got %s", client.State())
	}
}

func TestUploadRequiresReady(t *testing.T) {
	t.Parallel()

	objects := &fakeObjects{}
	client := newClient(objects, "logos", nil)
	if _, err := client.Upload(context.Background(), storage.Object{Name: "a.png"}); !errors.Is(err, errClientNotReady) {
		t.Fatalf("expected not ready error, got %v", err)
	}
	if objects.gotMeta != nil {
		t.Fatal("no insert expected before Init")
	}
}

func TestUploadSuccess(t *testing.T) {
	t.Parallel()

	name := "20240101T120000_Jane_Gala_logo.png"
	objects := &fakeObjects{created: &storagev1.Object{
		Id:        "logos/" + name + "/1",
		Name:      name,
		MediaLink: "https://storage.googleapis.com/download/logo",
	}}
	client := newClient(objects, "logos", nil)
	client.setState(enums.CollaboratorReady)

	stored, err := client.Upload(context.Background(), storage.Object{
		Name:        name,
		ContentType: "image/png",
		Description: "Logo for Jane Gala",
		Data:        []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if string(objects.gotBody) != "png-bytes" {
		t.Fatalf("unexpected body %q", objects.gotBody)
	}
	if objects.gotMeta.ContentType != "image/png" || objects.gotMeta.Metadata["description"] != "Logo for Jane Gala" {
		t.Fatalf("unexpected object metadata %+v", objects.gotMeta)
	}
	if stored.ViewLink != "https://storage.googleapis.com/logos/"+name {
		t.Fatalf("unexpected view link %s", stored.ViewLink)
	}
	if stored.DownloadLink != "https://storage.googleapis.com/download/logo" {
		t.Fatalf("unexpected download link %s", stored.DownloadLink)
	}
}

func TestUploadErrorIsDescribed(t *testing.T) {
	t.Parallel()

	client := newClient(&fakeObjects{insertErr: &googleapi.Error{Code: http.StatusNotFound, Message: "no such bucket"}}, "logos", nil)
	client.setState(enums.CollaboratorReady)

	_, err := client.Upload(context.Background(), storage.Object{Name: "a.png", Data: []byte("x")})
	if err == nil || !strings.Contains(err.Error(), "bucket not found") {
		t.Fatalf("expected described error, got %v", err)
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
}

func TestNewClientRequiresBucket(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(context.Background(), config.StorageConfig{GCSBucket: "  "}, config.GCPConfig{}, nil); err == nil {
		t.Fatal("expected missing bucket error")
	}
}

func TestServiceObjectsAgainstJSONAPI(t *testing.T) {
	t.Parallel()

	var uploads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/b/logos"):
			_, _ = io.WriteString(w, `{"name":"logos"}`)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/b/logos/o"):
			uploads++
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "png-bytes") {
				t.Errorf("upload body missing media: %q", body)
			}
			_, _ = io.WriteString(w, `{"id":"logos/a.png/1","name":"a.png","mediaLink":"https://example.test/a.png"}`)
		default:
			http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusTeapot)
		}
	}))
	defer srv.Close()

	svc, err := storagev1.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	client := newClient(&serviceObjects{svc: svc}, "logos", nil)
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	stored, err := client.Upload(context.Background(), storage.Object{Name: "a.png", ContentType: "image/png", Data: []byte("png-bytes")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if uploads != 1 || stored.ID != "logos/a.png/1" || stored.DownloadLink != "https://example.test/a.png" {
		t.Fatalf("unexpected upload result %+v (uploads=%d)", stored, uploads)
	}
}
