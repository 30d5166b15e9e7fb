package storage

import (
	"fmt"
	"io"

	cfg "github.com/bienesraices/boutique/internal/config"
)

// Storage persists uploaded listing images. Save returns the reference
// stored on the listing row and later handed back to Delete.
type Storage interface {
	Save(filename string, file io.Reader) (string, error)
	Delete(ref string) error
}

// New selects the storage driver from app config: local disk by
// default, or any S3-compatible object store.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "", "local":
		return NewLocalStorage(c.UploadDir)
	case "s3":
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
