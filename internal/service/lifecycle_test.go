package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndavault/internal/config"
	"ndavault/internal/credit"
	"ndavault/internal/logging"
	"ndavault/internal/model"
	"ndavault/internal/repository"
	"ndavault/internal/storage"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) DecrementCredits(_ context.Context, id, tier string, cost int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.PlanTier != tier || u.CreditBalance < cost {
		return 0, false, nil
	}
	u.CreditBalance -= cost
	return u.CreditBalance, true, nil
}

func (m *memUsers) IncrementCredits(_ context.Context, id, tier string, cost int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.PlanTier != tier {
		return repository.ErrNotFound
	}
	u.CreditBalance += cost
	return nil
}

func (m *memUsers) balance(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].CreditBalance
}

func (m *memUsers) setBalance(id string, v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].CreditBalance = v
}

type memDocs struct {
	mu   sync.Mutex
	docs map[string]model.Document
}

func (m *memDocs) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = *doc
	cp := *doc
	return &cp, nil
}

func (m *memDocs) FindActiveByOwner(_ context.Context, id, ownerID string, now time.Time) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.UserID != ownerID || d.Status != model.StatusActive || d.Expired(now) {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (m *memDocs) ListByOwner(_ context.Context, ownerID string, now time.Time, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []model.Document
	for _, d := range m.docs {
		if d.UserID == ownerID && d.Status == model.StatusActive && !d.Expired(now) {
			items = append(items, d)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	total := len(items)
	if pq.Offset >= len(items) {
		return &repository.PageResult[model.Document]{Total: total}, nil
	}
	items = items[pq.Offset:]
	if len(items) > pq.Limit {
		items = items[:pq.Limit]
	}
	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

func (m *memDocs) ListExpired(_ context.Context, now time.Time) ([]model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Document
	for _, d := range m.docs {
		if d.Status == model.StatusActive && d.Expired(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocs) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *memDocs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	return storage.ObjectInfo{Key: key, Size: int64(len(b)), ContentType: opt.ContentType}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) PresignGet(_ context.Context, key string, opt storage.PresignOptions) (string, error) {
	if opt.Download {
		return "https://objects.test/" + key + "?download=1", nil
	}
	return "https://objects.test/" + key, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type renderFunc func(ctx context.Context, text string) ([]byte, error)

func (f renderFunc) Render(ctx context.Context, text string) ([]byte, error) { return f(ctx, text) }

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	users := &memUsers{users: map[string]*model.User{
		"u1": {ID: "u1", Name: "Jane Doe", Email: "jane@example.com", PlanTier: "Premium", CreditBalance: 20},
		"u2": {ID: "u2", Name: "John Roe", PlanTier: "Premium_contract"},
	}}
	docs := &memDocs{docs: map[string]model.Document{}}
	store := &memStore{objects: map[string][]byte{}}

	renderErr := error(nil)
	render := renderFunc(func(_ context.Context, text string) ([]byte, error) {
		if renderErr != nil {
			return nil, renderErr
		}
		return []byte("%PDF " + text), nil
	})

	ledger := credit.NewLedger(users, config.CreditConfig{UnlimitedTier: "Premium_contract", MeteredTier: "Premium"}, logging.Discard())
	svc := NewDocumentService(store, docs, ledger, render, testOpts, nil, logging.Discard()).(*documentService)
	now := fixedNow
	svc.now = func() time.Time { return now }

	jane, err := users.FindByID(ctx, "u1")
	require.NoError(t, err)

	// First generation debits 15 of 20 credits and records one document.
	gen, err := svc.GeneratePDF(ctx, *jane, "agreement")
	require.NoError(t, err)
	assert.Equal(t, 5, users.balance("u1"))
	assert.Equal(t, 1, docs.count())
	assert.Equal(t, 1, store.count())
	assert.True(t, gen.Document.ExpiresAt.Equal(fixedNow.Add(30*24*time.Hour)))

	// Second generation is denied without side effects.
	_, err = svc.GeneratePDF(ctx, *jane, "agreement")
	assert.ErrorIs(t, err, ErrCreditsExhausted)
	assert.Equal(t, 5, users.balance("u1"))
	assert.Equal(t, 1, docs.count())

	// A render failure refunds the reservation.
	users.setBalance("u1", 20)
	renderErr = errors.New("renderer timed out")
	_, err = svc.GeneratePDF(ctx, *jane, "agreement")
	assert.ErrorIs(t, err, ErrRenderFailed)
	assert.Equal(t, 20, users.balance("u1"))
	assert.Equal(t, 1, docs.count())
	assert.Equal(t, 1, store.count())
	renderErr = nil

	// Unlimited users never touch their balance.
	john, err := users.FindByID(ctx, "u2")
	require.NoError(t, err)
	_, err = svc.GeneratePDF(ctx, *john, "agreement")
	require.NoError(t, err)
	assert.Equal(t, 0, users.balance("u2"))

	list, err := svc.List(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, gen.Document.ID, list.Items[0].ID)

	url, err := svc.Open(ctx, "u1", gen.Document.ID, true)
	require.NoError(t, err)
	assert.Contains(t, url, "download=1")

	// Another owner cannot see the document.
	_, err = svc.Open(ctx, "u2", gen.Document.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", gen.Document.ID), ErrNotFound)

	// After the retention window everything is swept.
	now = fixedNow.Add(31 * 24 * time.Hour)
	_, err = svc.Open(ctx, "u1", gen.Document.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 2, res.Removed)
	assert.Zero(t, docs.count())
	assert.Zero(t, store.count())
}
