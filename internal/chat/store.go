package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"easyvideo/internal/domain"
	"easyvideo/internal/infra"
)

const (
	DefaultSessionTTL      = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

type StoreOptions struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	Logger          *infra.Logger
}

// Store keeps sessions in memory. A session expires after TTL without
// activity; expired sessions are dropped by the janitor.
type Store struct {
	items  *cache.Cache
	logger *infra.Logger
	now    func() time.Time
	newID  func() string
}

func NewStore(opts StoreOptions) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	s := &Store{
		items:  cache.New(ttl, cleanup),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	s.items.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*session); ok {
			sess.close()
		}
		s.logger.Debug().Str("session_id", id).Msg("chat: session closed")
	})
	return s
}

// Create starts a new session holding only the welcome message.
func (s *Store) Create() Session {
	sess := newSession(s.newID(), s.now().UTC())
	s.items.SetDefault(sess.id, sess)
	s.logger.Debug().Str("session_id", sess.id).Msg("chat: session created")
	return sess.snapshot()
}

// Get returns a copy of the session and extends its lifetime.
func (s *Store) Get(id string) (Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	return sess.snapshot(), nil
}

func (s *Store) Delete(id string) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}
	s.items.Delete(strings.TrimSpace(id))
	return nil
}

// Count reports the number of live sessions, expired ones included until the
// janitor runs.
func (s *Store) Count() int {
	return s.items.ItemCount()
}

func (s *Store) lookup(id string) (*session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	v, ok := s.items.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	sess := v.(*session)
	// Replace only refreshes the expiry of a key that is still present, so a
	// concurrent Delete is never undone.
	if sess.isClosed() || s.items.Replace(id, sess, cache.DefaultExpiration) != nil {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}
