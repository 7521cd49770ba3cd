package memory

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/volleyball-bot/internal/domain/survey"
	basecache "github.com/riskibarqy/volleyball-bot/internal/platform/cache"
)

const sessionKeyPrefix = "survey:session:"

// SessionStore keeps survey sessions in a TTL store. Idle sessions expire
// ttl after their last save; a non-positive ttl never expires them.
type SessionStore struct {
	store *basecache.Store
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

func NewSessionStoreWithClock(ttl time.Duration, now func() time.Time) *SessionStore {
	return &SessionStore{store: basecache.NewStoreWithClock(ttl, now)}
}

func (s *SessionStore) Get(ctx context.Context, identity int64) (survey.Session, bool, error) {
	v, ok := s.store.Get(ctx, sessionKey(identity))
	if !ok {
		return survey.Session{}, false, nil
	}

	session, ok := v.(survey.Session)
	if !ok {
		return survey.Session{}, false, nil
	}

	return session.Clone(), true, nil
}

func (s *SessionStore) Save(ctx context.Context, session survey.Session) error {
	s.store.Set(ctx, sessionKey(session.PlayerIdentity), session.Clone())
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, identity int64) error {
	s.store.Delete(ctx, sessionKey(identity))
	return nil
}

// Active counts unexpired sessions.
func (s *SessionStore) Active() int {
	return s.store.Len()
}

func sessionKey(identity int64) string {
	return sessionKeyPrefix + strconv.FormatInt(identity, 10)
}
