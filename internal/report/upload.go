package report

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/chrisdamba/bagsim/internal/cloudwriter"
)

// UploadFiles copies local files to bucket under prefix, keeping their base
// names.
func UploadFiles(factory cloudwriter.CloudWriterFactory, bucket, prefix string, paths []string) error {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		key := path.Join(prefix, filepath.Base(p))
		err = cloudwriter.Upload(factory, bucket, key, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("error uploading %s: %w", p, err)
		}
	}
	return nil
}
