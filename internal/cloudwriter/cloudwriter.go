// Package cloudwriter buffers simulation artefacts and uploads them to object
// storage when closed.
package cloudwriter

import (
	"fmt"
	"io"
)

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// Upload copies r into a new object at objectPath.
func Upload(factory CloudWriterFactory, bucket, objectPath string, r io.Reader) error {
	w, err := factory.NewWriter(bucket, objectPath)
	if err != nil {
		return fmt.Errorf("failed to create cloud writer: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to buffer %s: %w", objectPath, err)
	}
	return w.Close()
}
