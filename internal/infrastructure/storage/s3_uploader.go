package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/almoxtrack-api/internal/application/ports"
)

var _ ports.ImageUploader = (*S3Uploader)(nil)

// putter subconjunto del cliente S3 usado por el uploader.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader sube imágenes a un bucket bajo el prefijo products/.
type S3Uploader struct {
	client    putter
	bucket    string
	publicURL string
}

// NewS3Uploader carga las credenciales por la cadena por defecto de AWS.
// publicURL vacío usa https://<bucket>.s3.<region>.amazonaws.com.
func NewS3Uploader(ctx context.Context, bucket, region, publicURL string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("storage: cargar config AWS: %w", err)
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return newS3Uploader(s3.NewFromConfig(cfg), bucket, publicURL), nil
}

func newS3Uploader(client putter, bucket, publicURL string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload sube el objeto y devuelve su URL pública.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	key := "products/" + objectName(filename)
	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := u.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	return u.publicURL + "/" + key, nil
}
