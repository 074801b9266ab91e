package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/almoxtrack-api/internal/application/ports"
)

var _ ports.ImageUploader = (*LocalUploader)(nil)

// LocalUploader guarda las imágenes en un directorio servido como estático bajo publicURL.
type LocalUploader struct {
	dir       string
	publicURL string
}

// NewLocalUploader crea el directorio si no existe.
func NewLocalUploader(dir, publicURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalUploader{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Upload escribe el archivo y devuelve su URL pública.
func (u *LocalUploader) Upload(ctx context.Context, data []byte, filename, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := objectName(filename)
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: escribir %s: %w", name, err)
	}
	return u.publicURL + "/" + name, nil
}
