/*
 * @module service/storage/blobstore
 * @description Abstracción del almacén de binarios: escritura en una ruta y
 *              generación de URL firmada de lectura con expiración
 * @architecture Capa de almacenamiento - interfaz de colaborador externo
 * @rules Este núcleo no posee los bytes del artefacto, sólo su ruta
 * @dependencies cloud.google.com/go/storage
 * @refs service/report
 */

package storage

import (
	"context"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
)

// BlobStore es el contrato que este núcleo consume del almacén de binarios.
type BlobStore interface {
	// Write guarda los bytes en la ruta con content-type y metadatos.
	Write(ctx context.Context, path string, data []byte, contentType string, metadata map[string]string) error
	// SignedURL produce una URL de lectura firmada válida durante ttl.
	SignedURL(path string, ttl time.Duration) (string, error)
}

// GCSBlobStore implementa BlobStore sobre un bucket de Cloud Storage.
type GCSBlobStore struct {
	bucket *gcs.BucketHandle
}

// NewGCSBlobStore crea el adaptador para el bucket dado.
func NewGCSBlobStore(bucket *gcs.BucketHandle) *GCSBlobStore {
	return &GCSBlobStore{bucket: bucket}
}

func (s *GCSBlobStore) Write(ctx context.Context, path string, data []byte, contentType string, metadata map[string]string) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata
	// PDF corto: subida simple, sin resumable
	w.ChunkSize = 0
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *GCSBlobStore) SignedURL(path string, ttl time.Duration) (string, error) {
	return s.bucket.SignedURL(path, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
}
