package testing

import (
	"context"

	"github.com/stretchr/testify/mock"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// MockCreator is a testify mock of the wizard Creator and Waiter interfaces.
// It can be used by every test that drives a wizard submission.
type MockCreator struct {
	mock.Mock
}

// Create records the call and returns the configured result.
func (m *MockCreator) Create(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*unstructured.Unstructured), args.Error(1)
}

// WaitForCreation records the call and returns the configured error.
func (m *MockCreator) WaitForCreation(ctx context.Context, obj *unstructured.Unstructured) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}
