package ports

import "context"

// ImageUploader puerto de salida para guardar imágenes de productos.
// Devuelve la URL pública; el núcleo solo almacena esa URL, no valida contenido ni tamaño.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
}
