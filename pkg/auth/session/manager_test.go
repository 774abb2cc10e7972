package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerStartAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()
	adminID := uuid.New()

	sess, err := manager.Start(ctx, adminID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.HasPrefix(sess.RefreshToken, sess.AccessID+".") {
		t.Fatalf("refresh token should embed access id, got %q", sess.RefreshToken)
	}
	stored := store.data[store.AccessSessionKey(sess.AccessID)]
	if !strings.HasPrefix(stored, adminID.String()+"|") {
		t.Fatalf("expected stored admin binding, got %q", stored)
	}

	if _, err := manager.Rotate(ctx, sess.AccessID+".wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
	if _, err := manager.Rotate(ctx, "garbage"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	next, err := manager.Rotate(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if next.AdminID != adminID {
		t.Fatalf("expected admin carried over, got %s", next.AdminID)
	}
	if _, exists := store.data[store.AccessSessionKey(sess.AccessID)]; exists {
		t.Fatalf("old access key left behind")
	}
	if _, err := manager.Rotate(ctx, sess.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("reused refresh token should be rejected, got %v", err)
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	sess, err := manager.Start(ctx, uuid.New())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	ok, err := manager.HasSession(ctx, sess.AccessID)
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}
	if err := manager.Revoke(ctx, sess.AccessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, sess.AccessID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
}

func TestManagerStartRequiresAdmin(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Start(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil admin id")
	}
}
