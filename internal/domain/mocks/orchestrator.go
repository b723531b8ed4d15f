package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/mutscore/internal/domain"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// MockOrchestrator is a mock type for the Orchestrator type.
type MockOrchestrator struct {
	mock.Mock
}

// TestMutation provides a mock function with given fields: ctx, args.
func (_m *MockOrchestrator) TestMutation(ctx context.Context, args domain.MutationArgs) (m.MutationOutcome, error) {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.MutationArgs) (m.MutationOutcome, error)); ok {
		return rf(ctx, args)
	}

	outcome, _ := ret.Get(0).(m.MutationOutcome)

	return outcome, ret.Error(1)
}

// NewMockOrchestrator creates a new instance of MockOrchestrator. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockOrchestrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrchestrator {
	mock := &MockOrchestrator{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
