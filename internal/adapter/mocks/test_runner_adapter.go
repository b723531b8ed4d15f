// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// MockTestRunnerAdapter is a mock type for the TestRunnerAdapter type.
type MockTestRunnerAdapter struct {
	mock.Mock
}

// Validate provides a mock function with given fields: ctx.
func (_m *MockTestRunnerAdapter) Validate(ctx context.Context) error {
	return _m.Called(ctx).Error(0)
}

// Run provides a mock function with given fields: ctx, target, timeout.
func (_m *MockTestRunnerAdapter) Run(ctx context.Context, target m.TestTarget, timeout time.Duration) (m.Execution, error) {
	ret := _m.Called(ctx, target, timeout)

	if rf, ok := ret.Get(0).(func(context.Context, m.TestTarget, time.Duration) (m.Execution, error)); ok {
		return rf(ctx, target, timeout)
	}

	execution, _ := ret.Get(0).(m.Execution)

	return execution, ret.Error(1)
}

// NewMockTestRunnerAdapter creates a new instance of MockTestRunnerAdapter. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTestRunnerAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTestRunnerAdapter {
	mock := &MockTestRunnerAdapter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
