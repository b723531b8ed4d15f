// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/mutscore/internal/domain"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// MockWorkflow is a mock type for the Workflow type.
type MockWorkflow struct {
	mock.Mock
}

// Test provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Test(ctx context.Context, args domain.TestArgs) (m.Report, error) {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.TestArgs) (m.Report, error)); ok {
		return rf(ctx, args)
	}

	report, _ := ret.Get(0).(m.Report)

	return report, ret.Error(1)
}

// Estimate provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Estimate(ctx context.Context, args domain.EstimateArgs) error {
	return _m.Called(ctx, args).Error(0)
}

// Show provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Show(ctx context.Context, args domain.ShowArgs) error {
	return _m.Called(ctx, args).Error(0)
}

// View provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return _m.Called(ctx, args).Error(0)
}

// Recover provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Recover(ctx context.Context, args domain.RecoverArgs) (bool, error) {
	ret := _m.Called(ctx, args)
	return ret.Bool(0), ret.Error(1)
}

// NewMockWorkflow creates a new instance of MockWorkflow. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mock := &MockWorkflow{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
