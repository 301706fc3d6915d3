package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Object is a file held by MemoryStore.
type Object struct {
	Body        []byte
	ContentType string
}

// MemoryStore keeps objects in process. It serves local development
// without a bucket and handler tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]Object
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]Object{}, now: time.Now}
}

func (m *MemoryStore) Upload(ctx context.Context, bucket, name string, body io.ReadSeeker, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+name] = Object{Body: data, ContentType: contentType}
	return nil
}

func (m *MemoryStore) PublicURL(bucket, name string) string {
	return "memory://" + bucket + "/" + escapeKey(name)
}

func (m *MemoryStore) SignedURL(ctx context.Context, bucket, name string, ttl time.Duration) (string, error) {
	if err := checkTTL(ttl); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?expires=%d", m.PublicURL(bucket, name), m.now().Add(ttl).Unix()), nil
}

func (m *MemoryStore) SignedUploadURL(ctx context.Context, bucket, name, contentType string, ttl time.Duration) (string, error) {
	u, err := m.SignedURL(ctx, bucket, name, ttl)
	if err != nil {
		return "", err
	}
	return u + "&method=PUT", nil
}

// Get returns the object stored under bucket/name.
func (m *MemoryStore) Get(bucket, name string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[bucket+"/"+name]
	return o, ok
}

// Names lists stored keys as bucket/name.
func (m *MemoryStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}
