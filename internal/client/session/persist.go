package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/pharmsim/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pharmsim/internal/common"
)

// PersistStore keeps the "trust this device" flag in durable storage.
// It decides whether a fresh process attempts a silent session restore.
type PersistStore struct {
	repo metadata.Repository
}

func NewPersistStore(repo metadata.Repository) *PersistStore {
	return &PersistStore{repo: repo}
}

// Load returns the stored flag; a missing or unreadable value reads as
// false.
func (p *PersistStore) Load(ctx context.Context) (bool, error) {
	v, ok, err := p.repo.Get(ctx, common.PersistMetadataKey)
	if err != nil {
		return false, fmt.Errorf("load persist flag: %w", err)
	}
	if !ok {
		return false, nil
	}
	persist, _ := strconv.ParseBool(v)
	return persist, nil
}

// Save writes the flag. Last write wins.
func (p *PersistStore) Save(ctx context.Context, persist bool) error {
	if err := p.repo.Set(ctx, common.PersistMetadataKey, strconv.FormatBool(persist)); err != nil {
		return fmt.Errorf("save persist flag: %w", err)
	}
	return nil
}
