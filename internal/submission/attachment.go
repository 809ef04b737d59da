package submission

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
)

const (
	defaultCustomer = "Customer"
	defaultEvent    = "Event"

	objectTimestampLayout = "20060102T150405"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Attachment is the optional logo file sent with a submission.
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Meta is the part of the attachment the file rule looks at.
func (a *Attachment) Meta() *validation.FileMeta {
	if a == nil {
		return nil
	}
	return &validation.FileMeta{Name: a.Name, ContentType: a.ContentType, Size: a.Size}
}

// ObjectName builds the stored name for a logo:
// {YYYYMMDDTHHMMSS}_{customer}_{event}_logo.{ext}, timestamp in UTC.
func ObjectName(original, customer, event string, at time.Time) string {
	ext := original
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = original[i+1:]
	}
	return fmt.Sprintf("%s_%s_%s_logo.%s",
		at.UTC().Format(objectTimestampLayout),
		unsafeNameChars.ReplaceAllString(orDefault(customer, defaultCustomer), "_"),
		unsafeNameChars.ReplaceAllString(orDefault(event, defaultEvent), "_"),
		ext,
	)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// LogoStore names logo attachments and hands them to a storage backend.
type LogoStore struct {
	backend storage.Uploader
	now     func() time.Time
	loc     *time.Location
}

func NewLogoStore(backend storage.Uploader, now func() time.Time, loc *time.Location) *LogoStore {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &LogoStore{backend: backend, now: now, loc: loc}
}

func (s *LogoStore) State() enums.CollaboratorState {
	return s.backend.State()
}

func (s *LogoStore) Provider() enums.StorageProvider {
	return s.backend.Provider()
}

// Upload stores the attachment under a generated name with a human readable
// description.
func (s *LogoStore) Upload(ctx context.Context, file Attachment, customer, event string) (*storage.StoredFile, error) {
	at := s.now()
	customer = orDefault(customer, defaultCustomer)
	event = orDefault(event, defaultEvent)
	return s.backend.Upload(ctx, storage.Object{
		Name:        ObjectName(file.Name, customer, event, at),
		ContentType: file.ContentType,
		Description: fmt.Sprintf("Logo upload for %s - %s (%s)", customer, event, at.In(s.loc).Format("1/2/2006")),
		Data:        file.Data,
	})
}
