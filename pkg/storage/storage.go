// Package storage holds the provider-neutral shapes shared by the file
// storage backends.
package storage

import (
	"context"

	"github.com/angelmondragon/customorder-backend/pkg/enums"
)

// Object is a file ready to be written to a storage backend.
type Object struct {
	Name        string
	ContentType string
	Description string
	Data        []byte
}

// StoredFile describes a file after a successful upload.
type StoredFile struct {
	ID           string
	Name         string
	ViewLink     string
	DownloadLink string
}

// Uploader is implemented by every storage backend.
type Uploader interface {
	Init(ctx context.Context) error
	State() enums.CollaboratorState
	Provider() enums.StorageProvider
	Upload(ctx context.Context, obj Object) (*StoredFile, error)
}
