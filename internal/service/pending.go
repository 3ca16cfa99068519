package service

import (
	"strconv"
	"time"

	"github.com/Kamilla170/bloom/internal/diagnosis"
	gocache "github.com/patrickmn/go-cache"
)

// PendingAnalysis is a diagnosis result awaiting the owner's save
// decision. At most one is held per owner; a newer analysis supersedes
// the previous one, and unsaved results expire with the cache TTL.
type PendingAnalysis struct {
	OwnerID   int64
	PlantID   string // empty for a not-yet-saved plant
	PhotoRef  string
	Result    *diagnosis.Result
	CreatedAt time.Time
}

// PendingStore keeps per-owner pending analyses in memory with
// expiration.
type PendingStore struct {
	c *gocache.Cache
}

func NewPendingStore(ttl time.Duration) *PendingStore {
	return &PendingStore{c: gocache.New(ttl, 2*ttl)}
}

func pendingKey(ownerID int64) string {
	return strconv.FormatInt(ownerID, 10)
}

func (s *PendingStore) Put(p *PendingAnalysis) {
	s.c.Set(pendingKey(p.OwnerID), p, gocache.DefaultExpiration)
}

func (s *PendingStore) Get(ownerID int64) (*PendingAnalysis, bool) {
	v, ok := s.c.Get(pendingKey(ownerID))
	if !ok {
		return nil, false
	}
	return v.(*PendingAnalysis), true
}

func (s *PendingStore) Clear(ownerID int64) {
	s.c.Delete(pendingKey(ownerID))
}
