/*
 * @module service/storage/firestore
 * @description Implementación del DocumentStore sobre una colección de Firestore
 * @architecture Capa de almacenamiento - adaptador
 * @stateFlow DocumentStore -> firestore.Client -> API de Firestore
 * @rules El cliente se construye una vez en el arranque y se inyecta; este
 *        adaptador no conoce la forma de los documentos
 * @dependencies cloud.google.com/go/firestore, google.golang.org/api/iterator
 * @refs main.go, service/storage/docstore.go
 */

package storage

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapta una colección de Firestore al contrato DocumentStore.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore crea el adaptador para la colección indicada.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *FirestoreStore) Add(ctx context.Context, data map[string]interface{}) (string, error) {
	ref, _, err := s.col().Add(ctx, data)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (map[string]interface{}, error) {
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) Query(ctx context.Context, q Query) ([]Document, error) {
	fq := s.col().Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Path, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
		if q.StartAfter != nil {
			fq = fq.StartAfter(q.StartAfter)
		}
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	it := fq.Documents(ctx)
	defer it.Stop()

	var docs []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) Merge(ctx context.Context, id string, patch map[string]interface{}) error {
	_, err := s.col().Doc(id).Set(ctx, patch, firestore.MergeAll)
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	_, err := s.col().Doc(id).Delete(ctx)
	return err
}

// DeleteAll elimina la colección completa en páginas de batchSize usando el
// BulkWriter. Si se interrumpe a medias quedan documentos sin borrar; el
// barrido es administrativo y se acepta como no atómico.
func (s *FirestoreStore) DeleteAll(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	total := 0
	for {
		it := s.col().Limit(batchSize).Documents(ctx)
		bw := s.client.BulkWriter(ctx)
		n := 0
		for {
			snap, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				it.Stop()
				bw.End()
				return total, err
			}
			if _, err := bw.Delete(snap.Ref); err != nil {
				it.Stop()
				bw.End()
				return total, err
			}
			n++
		}
		it.Stop()
		bw.End()
		total += n
		if n < batchSize {
			return total, nil
		}
	}
}
