// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/mutscore/internal/controller"
	m "gooze.dev/pkg/mutscore/internal/model"
)

// MockUI is a mock type for the UI type.
type MockUI struct {
	mock.Mock
}

// Start provides a mock function with given fields: ctx, options.
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	return _m.Called(ctx, options).Error(0)
}

// Close provides a mock function with given fields: ctx.
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// Wait provides a mock function with given fields: ctx.
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

// DisplayCatalog provides a mock function with given fields: ctx, artifact, mutations, err.
func (_m *MockUI) DisplayCatalog(ctx context.Context, artifact m.Path, mutations []m.Mutation, err error) error {
	return _m.Called(ctx, artifact, mutations, err).Error(0)
}

// DisplayBaseline provides a mock function with given fields: ctx, execution, err.
func (_m *MockUI) DisplayBaseline(ctx context.Context, execution m.Execution, err error) {
	_m.Called(ctx, execution, err)
}

// DisplayUpcomingTestsInfo provides a mock function with given fields: ctx, tested, total.
func (_m *MockUI) DisplayUpcomingTestsInfo(ctx context.Context, tested int, total int) {
	_m.Called(ctx, tested, total)
}

// DisplayStartingTestInfo provides a mock function with given fields: ctx, mutation, index.
func (_m *MockUI) DisplayStartingTestInfo(ctx context.Context, mutation m.Mutation, index int) {
	_m.Called(ctx, mutation, index)
}

// DisplayCompletedTestInfo provides a mock function with given fields: ctx, mutation, outcome, diff.
func (_m *MockUI) DisplayCompletedTestInfo(ctx context.Context, mutation m.Mutation, outcome m.MutationOutcome, diff string) {
	_m.Called(ctx, mutation, outcome, diff)
}

// DisplaySummary provides a mock function with given fields: ctx, summary.
func (_m *MockUI) DisplaySummary(ctx context.Context, summary m.MutationSummary) {
	_m.Called(ctx, summary)
}

// DisplayDiff provides a mock function with given fields: ctx, mutation, diff.
func (_m *MockUI) DisplayDiff(ctx context.Context, mutation m.Mutation, diff string) error {
	return _m.Called(ctx, mutation, diff).Error(0)
}

// NewMockUI creates a new instance of MockUI. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mock := &MockUI{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
