// Package memstore keeps users and content in process memory. It honours
// the same contracts as the MongoDB repositories, including unique email
// and username, and is used by tests and local runs without a database.
package memstore

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/repository"
)

// UserStore is an in-memory user repository.
type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]model.User)}
}

// Insert adds a user, enforcing unique email and username like the
// collection's unique indexes.
func (s *UserStore) Insert(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	for _, u := range s.byEmail {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	s.byEmail[user.Email] = *user
	return nil
}

// FindByEmail returns a copy of the stored user.
func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// CountByEmail returns 1 if the email is taken, else 0.
func (s *UserStore) CountByEmail(_ context.Context, email string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byEmail[email]; ok {
		return 1, nil
	}
	return 0, nil
}

// CountByUsername returns how many users hold the username.
func (s *UserStore) CountByUsername(_ context.Context, username string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, u := range s.byEmail {
		if u.Username == username {
			n++
		}
	}
	return n, nil
}

// SetAdmin marks the user as an active administrator.
func (s *UserStore) SetAdmin(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.IsAdmin = true
	u.IsActive = true
	s.byEmail[email] = u
	return nil
}

// SetActive toggles the active flag. Account administration has no HTTP
// surface, so this exists for tests and tooling.
func (s *UserStore) SetActive(email string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byEmail[email]; ok {
		u.IsActive = active
		s.byEmail[email] = u
	}
}

// ContentStore is an in-memory content repository.
type ContentStore[T model.Content] struct {
	mu   sync.RWMutex
	docs map[bson.ObjectID]T
	seq  map[bson.ObjectID]int
	next int
}

// NewContentStore returns an empty store.
func NewContentStore[T model.Content]() *ContentStore[T] {
	return &ContentStore[T]{
		docs: make(map[bson.ObjectID]T),
		seq:  make(map[bson.ObjectID]int),
	}
}

// Insert stores a document. Its ID must be set.
func (s *ContentStore[T]) Insert(_ context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.docs[doc.DocumentID()] = doc
	s.seq[doc.DocumentID()] = s.next
	return nil
}

// Get returns the document with the given hex ID.
func (s *ContentStore[T]) Get(_ context.Context, id string) (*T, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &doc, nil
}

// List returns matching documents, most recently inserted first.
func (s *ContentStore[T]) List(_ context.Context, filter repository.Filter) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		doc T
		seq int
	}
	var matched []entry
	for id, doc := range s.docs {
		ok, err := matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, entry{doc: doc, seq: s.seq[id]})
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	docs := make([]T, 0, len(matched))
	for _, e := range matched {
		docs = append(docs, e.doc)
	}
	return docs, nil
}

// Delete removes the document with the given hex ID.
func (s *ContentStore[T]) Delete(_ context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[oid]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, oid)
	delete(s.seq, oid)
	return nil
}

// matches compares filter values against the document's bson field values.
func matches(doc any, filter repository.Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return false, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return false, err
	}
	for k, want := range filter {
		if fields[k] != want {
			return false, nil
		}
	}
	return true, nil
}
