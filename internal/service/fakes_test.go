package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{now: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeSessionStore struct {
	mu        sync.Mutex
	byToken   map[string]*model.Session
	nextID    int
	deletes   int
	updates   int
	deleteErr error
	findErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{byToken: map[string]*model.Session{}}
}

func (f *fakeSessionStore) put(s model.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if s.ID == 0 {
		s.ID = f.nextID
	}
	f.byToken[s.Token] = &s
}

func (f *fakeSessionStore) get(token string) (model.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byToken[token]
	if !ok {
		return model.Session{}, false
	}
	return *s, true
}

func (f *fakeSessionStore) FindByToken(_ context.Context, token string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.byToken[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.byToken[s.Token]; dup {
		return repository.ErrDuplicate
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.byToken[s.Token] = &cp
	return nil
}

func (f *fakeSessionStore) UpdateExpiry(_ context.Context, s *model.Session, expiredAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	stored, ok := f.byToken[s.Token]
	if !ok {
		return repository.ErrNotFound
	}
	stored.ExpiredAt = expiredAt
	s.ExpiredAt = expiredAt
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byToken[s.Token]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byToken, s.Token)
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[int]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	f := &fakeUserStore{users: map[int]*model.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

var errStoreDown = errors.New("store unavailable")
