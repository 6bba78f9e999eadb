// Package session holds the transient per-user exercise state between the
// "present exercise" and "grade submission" calls. It is a cache keyed by
// user identity, overwritten wholesale on every new presentation and
// explicitly invalidated on logout or zone re-entry.
package session

import (
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/dawnhollow/memquest/internal/domain"
)

// Exercise is the pending exercise state for one user. Token is echoed back
// on submission so a stale submit against a replaced exercise is rejected.
type Exercise struct {
	Token     string
	QuestName string
	Zone      domain.Zone
	Targets   []string
	CreatedAt time.Time
}

// Cache is an LRU-bounded map of userID to pending exercise.
type Cache struct {
	inner *lru.Cache
}

// NewCache builds a cache holding at most size users' pending exercises.
func NewCache(size int) (*Cache, error) {
	inner, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Put replaces the user's pending exercise and returns the new token.
func (c *Cache) Put(userID, questName string, zone domain.Zone, targets []string) string {
	token := uuid.NewString()
	c.inner.Add(userID, &Exercise{
		Token:     token,
		QuestName: questName,
		Zone:      zone,
		Targets:   targets,
		CreatedAt: time.Now(),
	})
	return token
}

// Get retrieves the user's pending exercise if the token matches. A miss or
// token mismatch returns domain.ErrNoExercise. The exercise stays pending so
// a failed attempt can be retried; callers invalidate on success.
func (c *Cache) Get(userID, token string) (*Exercise, error) {
	v, ok := c.inner.Get(userID)
	if !ok {
		return nil, domain.ErrNoExercise
	}
	ex := v.(*Exercise)
	if ex.Token != token {
		return nil, domain.ErrNoExercise
	}
	return ex, nil
}

// Invalidate drops any pending exercise for the user.
func (c *Cache) Invalidate(userID string) {
	c.inner.Remove(userID)
}
