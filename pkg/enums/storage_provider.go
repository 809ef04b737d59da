package enums

import (
	"fmt"
	"strings"
)

// StorageProvider names the backend used for logo attachments.
type StorageProvider string

const (
	StorageProviderDrive StorageProvider = "drive"
	StorageProviderGCS   StorageProvider = "gcs"
	StorageProviderNone  StorageProvider = "none"
)

var validStorageProviders = []StorageProvider{
	StorageProviderDrive,
	StorageProviderGCS,
	StorageProviderNone,
}

func (p StorageProvider) String() string {
	return string(p)
}

func (p StorageProvider) IsValid() bool {
	for _, candidate := range validStorageProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseStorageProvider converts raw config input into a StorageProvider.
func ParseStorageProvider(value string) (StorageProvider, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStorageProviders {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid storage provider %q", value)
}
