package tx

import "context"

// MockManager is a test implementation of Manager that runs fn directly.
// Use in unit tests to avoid database dependencies.
type MockManager struct {
	RunFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunInTransaction implements Manager.
func (m *MockManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, fn)
	}
	return fn(ctx)
}

// ReadOnly implements ReadOnlyManager.
func (m *MockManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}

// Ensure compile-time interface compliance.
var _ ReadOnlyManager = (*MockManager)(nil)
