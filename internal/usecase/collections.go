package usecase

import (
	"fmt"
	"strings"

	"ragstore/internal/adapter/store"
	"ragstore/internal/domain"
)

// Collections handles collection lifecycle.
type Collections struct {
	store *store.BoltStore
}

func NewCollections(st *store.BoltStore) *Collections {
	return &Collections{store: st}
}

// Create adds a new collection. The name is its immutable unique key.
func (c *Collections) Create(name, description string) (domain.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Collection{}, fmt.Errorf("collection name must not be empty: %w", domain.ErrInvalidArgument)
	}
	return c.store.CreateCollection(name, description)
}

// Get returns the collection with its live document count.
func (c *Collections) Get(name string) (domain.Collection, error) {
	return c.store.GetCollection(name)
}

func (c *Collections) List() ([]domain.Collection, error) {
	return c.store.ListCollections()
}

// Delete removes the collection and all documents it owns.
func (c *Collections) Delete(name string) error {
	return c.store.DeleteCollection(name)
}
