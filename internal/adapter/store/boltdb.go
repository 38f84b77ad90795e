package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"ragstore/internal/domain"
	"ragstore/internal/port"
)

// schemaVersion is bumped on breaking changes to the storage format.
const schemaVersion = 1

var (
	bucketMeta        = []byte("meta")
	bucketCollections = []byte("collections")
	bucketCollIDs     = []byte("collection_ids")
	bucketDocs        = []byte("documents")
	bucketBlobs       = []byte("blobs")
	bucketEmbeddings  = []byte("embeddings")
	bucketCollDocs    = []byte("coll_docs")
	bucketPostings    = []byte("postings")

	keySchemaVersion = []byte("schema_version")
	keyModel         = []byte("model")
)

// BoltStore persists collections, documents, embeddings and the keyword
// postings index in a single BoltDB file. Bolt's single-writer transactions
// give the atomicity the engine relies on: a document insert, its embedding,
// its postings and the collection counter all commit together, and readers
// only ever see committed state.
type BoltStore struct {
	db *bbolt.DB
}

type collRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DocCount    int    `json:"doc_count"`
	TotalTokens int    `json:"total_tokens"`
	CreatedAt   int64  `json:"created_at"`
}

type docRecord struct {
	CollectionID string            `json:"collection_id"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Tokens       []string          `json:"tokens,omitempty"`
	CreatedAt    int64             `json:"created_at"`
}

type modelBinding struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
}

// DocumentInput is one document to insert: content already embedded and
// tokenized by the caller.
type DocumentInput struct {
	Content   string
	Embedding []float32
	Metadata  map[string]string
	Tokens    []string
}

// NewBoltStore opens (or creates) the store at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w (%v)", domain.ErrStorage, err)
		}
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w (%v)", path, domain.ErrStorage, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketMeta, bucketCollections, bucketCollIDs, bucketDocs, bucketBlobs, bucketEmbeddings, bucketCollDocs, bucketPostings}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}

		meta := tx.Bucket(bucketMeta)
		if data := meta.Get(keySchemaVersion); data != nil {
			var v int
			if err := json.Unmarshal(data, &v); err == nil && v > schemaVersion {
				return fmt.Errorf("store created by a newer version (schema v%d > v%d)", v, schemaVersion)
			}
			return nil
		}
		data, _ := json.Marshal(schemaVersion)
		return meta.Put(keySchemaVersion, data)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init store: %w (%v)", domain.ErrStorage, err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// BindModel records the embedding model this store was created with, or
// verifies it on reopen. Every document in a store carries vectors from one
// model; opening with a different one is refused.
func (s *BoltStore) BindModel(name string, dimension int) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		data := meta.Get(keyModel)
		if data == nil {
			out, err := json.Marshal(modelBinding{Name: name, Dimension: dimension})
			if err != nil {
				return err
			}
			return meta.Put(keyModel, out)
		}

		var bound modelBinding
		if err := json.Unmarshal(data, &bound); err != nil {
			return fmt.Errorf("decode model binding: %w (%v)", domain.ErrStorage, err)
		}
		if bound.Name != name {
			return fmt.Errorf("store is bound to model %q, not %q: %w", bound.Name, name, domain.ErrConflict)
		}
		if bound.Dimension == 0 && dimension > 0 {
			out, err := json.Marshal(modelBinding{Name: name, Dimension: dimension})
			if err != nil {
				return err
			}
			return meta.Put(keyModel, out)
		}
		if dimension > 0 && bound.Dimension > 0 && bound.Dimension != dimension {
			return fmt.Errorf("store is bound to dimension %d, not %d: %w", bound.Dimension, dimension, domain.ErrConflict)
		}
		return nil
	})
}

// collections

func (s *BoltStore) CreateCollection(name, description string) (domain.Collection, error) {
	var coll domain.Collection
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCollections)
		if b.Get([]byte(name)) != nil {
			return fmt.Errorf("collection %q already exists: %w", name, domain.ErrConflict)
		}

		rec := collRecord{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: time.Now().Unix(),
		}
		rec.Description = description
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(name), data); err != nil {
			return err
		}
		if err := tx.Bucket(bucketCollIDs).Put([]byte(rec.ID), []byte(name)); err != nil {
			return err
		}
		coll = rec.toDomain()
		return nil
	})
	return coll, err
}

func (s *BoltStore) GetCollection(name string) (domain.Collection, error) {
	var coll domain.Collection
	err := s.db.View(func(tx *bbolt.Tx) error {
		rec, err := getCollRecord(tx, name)
		if err != nil {
			return err
		}
		coll = rec.toDomain()
		return nil
	})
	return coll, err
}

func (s *BoltStore) ListCollections() ([]domain.Collection, error) {
	var colls []domain.Collection
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCollections).ForEach(func(k, v []byte) error {
			var rec collRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode collection %s: %w (%v)", k, domain.ErrStorage, err)
			}
			colls = append(colls, rec.toDomain())
			return nil
		})
	})
	return colls, err
}

// DeleteCollection removes the collection and everything it owns: documents,
// content blobs, embeddings and postings.
func (s *BoltStore) DeleteCollection(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		rec, err := getCollRecord(tx, name)
		if err != nil {
			return err
		}

		docs := tx.Bucket(bucketDocs)
		blobs := tx.Bucket(bucketBlobs)
		embeddings := tx.Bucket(bucketEmbeddings)

		collDocs := tx.Bucket(bucketCollDocs)
		prefix := collDocPrefix(rec.ID)
		c := collDocs.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			dk := k[len(prefix):]
			if err := docs.Delete(dk); err != nil {
				return err
			}
			if err := blobs.Delete(dk); err != nil {
				return err
			}
			if err := embeddings.Delete(dk); err != nil {
				return err
			}
			if err := collDocs.Delete(k); err != nil {
				return err
			}
		}

		postings := tx.Bucket(bucketPostings)
		pc := postings.Cursor()
		for k, _ := pc.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = pc.Next() {
			if err := postings.Delete(k); err != nil {
				return err
			}
		}

		if err := tx.Bucket(bucketCollIDs).Delete([]byte(rec.ID)); err != nil {
			return err
		}
		return tx.Bucket(bucketCollections).Delete([]byte(name))
	})
}

// documents

// AddDocuments inserts all inputs into the named collection in a single
// transaction, together with the postings updates and the document-count
// increment. Either every input lands or none does.
func (s *BoltStore) AddDocuments(collectionName string, inputs []DocumentInput) ([]domain.Document, error) {
	var added []domain.Document
	err := s.db.Update(func(tx *bbolt.Tx) error {
		rec, err := getCollRecord(tx, collectionName)
		if err != nil {
			return err
		}

		docs := tx.Bucket(bucketDocs)
		blobs := tx.Bucket(bucketBlobs)
		embeddings := tx.Bucket(bucketEmbeddings)
		collDocs := tx.Bucket(bucketCollDocs)

		now := time.Now()
		// Postings for the whole batch are merged per term before writing so
		// each term's list is unmarshalled at most once.
		batchPostings := make(map[string][]domain.Posting)

		for _, in := range inputs {
			id, err := docs.NextSequence()
			if err != nil {
				return err
			}

			dr := docRecord{
				CollectionID: rec.ID,
				Metadata:     in.Metadata,
				Tokens:       in.Tokens,
				CreatedAt:    now.Unix(),
			}
			data, err := json.Marshal(dr)
			if err != nil {
				return err
			}
			dk := docKey(id)
			if err := docs.Put(dk, data); err != nil {
				return err
			}
			if err := blobs.Put(dk, []byte(in.Content)); err != nil {
				return err
			}
			if err := embeddings.Put(dk, encodeVector(in.Embedding)); err != nil {
				return err
			}
			if err := collDocs.Put(collDocKey(rec.ID, id), nil); err != nil {
				return err
			}

			tf := make(map[string]int, len(in.Tokens))
			for _, t := range in.Tokens {
				tf[t]++
			}
			for term, n := range tf {
				batchPostings[term] = append(batchPostings[term], domain.Posting{DocID: id, TF: n, DL: len(in.Tokens)})
			}

			rec.DocCount++
			rec.TotalTokens += len(in.Tokens)
			added = append(added, domain.Document{
				ID:             id,
				CollectionID:   rec.ID,
				CollectionName: rec.Name,
				Content:        in.Content,
				Metadata:       in.Metadata,
				CreatedAt:      now,
			})
		}

		postings := tx.Bucket(bucketPostings)
		for term, newPostings := range batchPostings {
			key := postingKey(rec.ID, term)
			var existing []domain.Posting
			if data := postings.Get(key); data != nil {
				if err := json.Unmarshal(data, &existing); err != nil {
					return fmt.Errorf("decode postings for %q: %w (%v)", term, domain.ErrStorage, err)
				}
			}
			existing = append(existing, newPostings...)
			data, err := json.Marshal(existing)
			if err != nil {
				return err
			}
			if err := postings.Put(key, data); err != nil {
				return err
			}
		}

		return putCollRecord(tx, rec)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *BoltStore) GetDocument(id uint64) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		d, err := getDocument(tx, id)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	return doc, err
}

func (s *BoltStore) DeleteDocument(id uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		dk := docKey(id)
		data := docs.Get(dk)
		if data == nil {
			return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		var dr docRecord
		if err := json.Unmarshal(data, &dr); err != nil {
			return fmt.Errorf("decode document %d: %w (%v)", id, domain.ErrStorage, err)
		}

		postings := tx.Bucket(bucketPostings)
		seen := make(map[string]struct{}, len(dr.Tokens))
		for _, term := range dr.Tokens {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}

			key := postingKey(dr.CollectionID, term)
			pdata := postings.Get(key)
			if pdata == nil {
				continue
			}
			var list []domain.Posting
			if err := json.Unmarshal(pdata, &list); err != nil {
				continue
			}
			filtered := list[:0]
			for _, p := range list {
				if p.DocID != id {
					filtered = append(filtered, p)
				}
			}
			if len(filtered) == 0 {
				if err := postings.Delete(key); err != nil {
					return err
				}
				continue
			}
			out, err := json.Marshal(filtered)
			if err != nil {
				return err
			}
			if err := postings.Put(key, out); err != nil {
				return err
			}
		}

		if err := docs.Delete(dk); err != nil {
			return err
		}
		if err := tx.Bucket(bucketBlobs).Delete(dk); err != nil {
			return err
		}
		if err := tx.Bucket(bucketEmbeddings).Delete(dk); err != nil {
			return err
		}
		if err := tx.Bucket(bucketCollDocs).Delete(collDocKey(dr.CollectionID, id)); err != nil {
			return err
		}

		// The owning collection may already be gone mid-cascade; only then is
		// a missing record acceptable.
		name := tx.Bucket(bucketCollIDs).Get([]byte(dr.CollectionID))
		if name == nil {
			return nil
		}
		rec, err := getCollRecord(tx, string(name))
		if err != nil {
			return err
		}
		rec.DocCount--
		rec.TotalTokens -= len(dr.Tokens)
		return putCollRecord(tx, rec)
	})
}

// ListDocuments returns the collection's documents in insertion order,
// skipping offset entries and returning at most limit. A negative limit
// means no limit; limit zero returns an empty slice.
func (s *BoltStore) ListDocuments(collectionName string, limit, offset int) ([]domain.Document, error) {
	docs := []domain.Document{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		rec, err := getCollRecord(tx, collectionName)
		if err != nil {
			return err
		}
		if limit == 0 {
			return nil
		}

		prefix := collDocPrefix(rec.ID)
		c := tx.Bucket(bucketCollDocs).Cursor()
		skipped := 0
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(docs) >= limit {
				break
			}
			doc, err := getDocument(tx, docKeyID(k[len(prefix):]))
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// search support

// Vectors snapshots all embeddings of a collection. The returned slices are
// copies decoded out of the read transaction, so a long scoring pass never
// holds the store's read lock.
func (s *BoltStore) Vectors(collectionID string) ([]port.VectorEntry, error) {
	var entries []port.VectorEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		embeddings := tx.Bucket(bucketEmbeddings)
		prefix := collDocPrefix(collectionID)
		c := tx.Bucket(bucketCollDocs).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			dk := k[len(prefix):]
			blob := embeddings.Get(dk)
			if blob == nil {
				continue
			}
			vec, err := decodeVector(blob)
			if err != nil {
				return fmt.Errorf("document %d: %w (%v)", docKeyID(dk), domain.ErrStorage, err)
			}
			entries = append(entries, port.VectorEntry{DocID: docKeyID(dk), Vector: vec})
		}
		return nil
	})
	return entries, err
}

// Postings returns the term's postings within one collection.
func (s *BoltStore) Postings(collectionID, term string) ([]domain.Posting, error) {
	var list []domain.Posting
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPostings).Get(postingKey(collectionID, term))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode postings for %q: %w (%v)", term, domain.ErrStorage, err)
		}
		return nil
	})
	return list, err
}

// CollectionStats returns the document count and average document length in
// tokens, used by BM25 scoring.
func (s *BoltStore) CollectionStats(collectionID string) (count int, avgDL float64, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		name := tx.Bucket(bucketCollIDs).Get([]byte(collectionID))
		if name == nil {
			return fmt.Errorf("collection %s: %w", collectionID, domain.ErrNotFound)
		}
		rec, err := getCollRecord(tx, string(name))
		if err != nil {
			return err
		}
		count = rec.DocCount
		if rec.DocCount > 0 {
			avgDL = float64(rec.TotalTokens) / float64(rec.DocCount)
		}
		return nil
	})
	return count, avgDL, err
}

// helpers

func getCollRecord(tx *bbolt.Tx, name string) (collRecord, error) {
	var rec collRecord
	data := tx.Bucket(bucketCollections).Get([]byte(name))
	if data == nil {
		return rec, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode collection %q: %w (%v)", name, domain.ErrStorage, err)
	}
	return rec, nil
}

func putCollRecord(tx *bbolt.Tx, rec collRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketCollections).Put([]byte(rec.Name), data)
}

func getDocument(tx *bbolt.Tx, id uint64) (domain.Document, error) {
	var doc domain.Document
	dk := docKey(id)
	data := tx.Bucket(bucketDocs).Get(dk)
	if data == nil {
		return doc, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	var dr docRecord
	if err := json.Unmarshal(data, &dr); err != nil {
		return doc, fmt.Errorf("decode document %d: %w (%v)", id, domain.ErrStorage, err)
	}

	content := tx.Bucket(bucketBlobs).Get(dk)
	name := tx.Bucket(bucketCollIDs).Get([]byte(dr.CollectionID))

	doc = domain.Document{
		ID:             id,
		CollectionID:   dr.CollectionID,
		CollectionName: string(name),
		Content:        string(content),
		Metadata:       dr.Metadata,
		CreatedAt:      time.Unix(dr.CreatedAt, 0),
	}
	return doc, nil
}

func (r collRecord) toDomain() domain.Collection {
	return domain.Collection{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		DocCount:    r.DocCount,
		CreatedAt:   time.Unix(r.CreatedAt, 0),
	}
}
