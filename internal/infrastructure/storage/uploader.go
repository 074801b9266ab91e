// Package storage implementa el puerto ImageUploader (directorio local o S3).
package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// objectName genera un nombre único conservando la extensión original en minúsculas.
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return uuid.New().String() + ext
}
