package engine

import (
	"context"

	"github.com/voisin/friendgraph/internal/identity"
	"github.com/voisin/friendgraph/internal/notify"
	"github.com/voisin/friendgraph/pkg/graph"
)

// StoreCall records one query issued against the mock store.
type StoreCall struct {
	Cypher string
	Params map[string]any
}

// MockStore implements graph.Store for tests.
type MockStore struct {
	ReadFunc  func(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	WriteFunc func(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	ReadCalls  []StoreCall
	WriteCalls []StoreCall
}

var _ graph.Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		ReadFunc: func(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
			return nil, nil
		},
		WriteFunc: func(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
			return nil, nil
		},
	}
}

func (m *MockStore) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	m.ReadCalls = append(m.ReadCalls, StoreCall{Cypher: cypher, Params: params})
	return m.ReadFunc(ctx, cypher, params)
}

func (m *MockStore) Write(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	m.WriteCalls = append(m.WriteCalls, StoreCall{Cypher: cypher, Params: params})
	return m.WriteFunc(ctx, cypher, params)
}

// MockResolver implements identity.Resolver for tests.
type MockResolver struct {
	ExistsFunc func(ctx context.Context, userID string) (bool, error)

	ExistsCalls []string
}

var _ identity.Resolver = (*MockResolver)(nil)

func NewMockResolver() *MockResolver {
	return &MockResolver{
		ExistsFunc: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
	}
}

func (m *MockResolver) Exists(ctx context.Context, userID string) (bool, error) {
	m.ExistsCalls = append(m.ExistsCalls, userID)
	return m.ExistsFunc(ctx, userID)
}

// NotifyCall records one emitted event.
type NotifyCall struct {
	Event   string
	Payload any
}

// MockNotifier implements notify.Notifier for tests.
type MockNotifier struct {
	NotifyCalls []NotifyCall
}

var _ notify.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(_ context.Context, event string, payload any) {
	m.NotifyCalls = append(m.NotifyCalls, NotifyCall{Event: event, Payload: payload})
}

// newTestEngine wires an engine over fresh mocks.
func newTestEngine() (*Engine, *MockStore, *MockResolver, *MockNotifier) {
	store := NewMockStore()
	resolver := NewMockResolver()
	notifier := &MockNotifier{}
	return New(store, resolver, notifier), store, resolver, notifier
}
