/*
 * @module service/storage/memory
 * @description Fakes en memoria del DocumentStore y BlobStore para pruebas,
 *              con simulación opcional de índice compuesto ausente
 * @architecture Infraestructura de pruebas
 * @rules Reproduce la semántica de consulta del almacén real: los documentos
 *        sin el campo de orden quedan fuera del resultado ordenado
 * @dependencies github.com/google/uuid, github.com/spf13/cast
 * @refs service/report, service/analytics, api/controllers
 */

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MemoryStore es un DocumentStore en memoria apto para pruebas concurrentes.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]interface{}

	// FailCompound hace que las consultas con filtro + orden fallen con
	// FAILED_PRECONDITION, como un almacén sin el índice compuesto.
	FailCompound bool
}

// NewMemoryStore crea un almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]interface{})}
}

func (s *MemoryStore) Add(_ context.Context, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.docs[id] = deepCopy(data).(map[string]interface{})
	s.mu.Unlock()
	return id, nil
}

// Seed inserta un documento con id conocido, para fijar escenarios de prueba.
func (s *MemoryStore) Seed(id string, data map[string]interface{}) {
	s.mu.Lock()
	s.docs[id] = deepCopy(data).(map[string]interface{})
	s.mu.Unlock()
}

func (s *MemoryStore) Get(_ context.Context, id string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(doc).(map[string]interface{}), nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Document, error) {
	if s.FailCompound && len(q.Filters) > 0 && q.OrderBy != "" {
		return nil, status.Error(codes.FailedPrecondition, "FAILED_PRECONDITION: the query requires a composite index")
	}

	s.mu.RLock()
	var out []Document
	for id, doc := range s.docs {
		if !matches(doc, q.Filters) {
			continue
		}
		if q.OrderBy != "" && ValueAt(doc, q.OrderBy) == nil {
			continue
		}
		out = append(out, Document{ID: id, Data: deepCopy(doc).(map[string]interface{})})
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(ValueAt(out[i].Data, q.OrderBy), ValueAt(out[j].Data, q.OrderBy))
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
		if q.StartAfter != nil {
			kept := out[:0]
			for _, d := range out {
				c := compareValues(ValueAt(d.Data, q.OrderBy), q.StartAfter)
				if (q.Desc && c < 0) || (!q.Desc && c > 0) {
					kept = append(kept, d)
				}
			}
			out = kept
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Merge(_ context.Context, id string, patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		doc = make(map[string]interface{})
		s.docs[id] = doc
	}
	mergeInto(doc, deepCopy(patch).(map[string]interface{}))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.docs, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context, _ int) (int, error) {
	s.mu.Lock()
	n := len(s.docs)
	s.docs = make(map[string]map[string]interface{})
	s.mu.Unlock()
	return n, nil
}

// Len devuelve cuántos documentos hay almacenados.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func matches(doc map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v := ValueAt(doc, f.Path)
		switch f.Op {
		case "==":
			if !equalValues(v, f.Value) {
				return false
			}
		case ">=":
			if v == nil || compareValues(v, f.Value) < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func equalValues(a, b interface{}) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	return cast.ToString(a) == cast.ToString(b)
}

func compareValues(a, b interface{}) int {
	if ta, aok := a.(time.Time); aok {
		if tb, bok := b.(time.Time); bok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	na, aerr := cast.ToFloat64E(a)
	nb, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	sa, sb := cast.ToString(a), cast.ToString(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func mergeInto(dst, patch map[string]interface{}) {
	for k, v := range patch {
		if pv, ok := v.(map[string]interface{}); ok {
			if dv, ok := dst[k].(map[string]interface{}); ok {
				mergeInto(dv, pv)
				continue
			}
		}
		dst[k] = v
	}
}

func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}

// MemoryBlobStore es un BlobStore en memoria para pruebas.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// NewMemoryBlobStore crea un almacén de blobs vacío.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryBlobStore) Write(_ context.Context, path string, data []byte, contentType string, metadata map[string]string) error {
	s.mu.Lock()
	s.blobs[path] = memoryBlob{data: append([]byte(nil), data...), contentType: contentType, metadata: metadata}
	s.mu.Unlock()
	return nil
}

func (s *MemoryBlobStore) SignedURL(path string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.invalid/%s?expires=%d", path, time.Now().Add(ttl).Unix()), nil
}

// Has reporta si existe un blob en la ruta.
func (s *MemoryBlobStore) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[path]
	return ok
}

// ContentType devuelve el content-type guardado para la ruta.
func (s *MemoryBlobStore) ContentType(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[path].contentType
}
