package contract

import (
	"context"

	"github.com/huangsam/glexport/schema"
	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	mock.Mock
}

var _ APIClient = &MockAPIClient{} // Compile-time check

// FetchGroups implements the APIClient interface.
func (m *MockAPIClient) FetchGroups(ctx context.Context, url string) (schema.Page[schema.Group], error) {
	args := m.Called(ctx, url)
	return args.Get(0).(schema.Page[schema.Group]), args.Error(1)
}

// FetchProjects implements the APIClient interface.
func (m *MockAPIClient) FetchProjects(ctx context.Context, url string) (schema.Page[schema.Project], error) {
	args := m.Called(ctx, url)
	return args.Get(0).(schema.Page[schema.Project]), args.Error(1)
}

// FetchCommits implements the APIClient interface.
func (m *MockAPIClient) FetchCommits(ctx context.Context, url string) (schema.Page[schema.Commit], error) {
	args := m.Called(ctx, url)
	return args.Get(0).(schema.Page[schema.Commit]), args.Error(1)
}

// MockSelector is a mock implementation of Selector for testing.
type MockSelector struct {
	mock.Mock
}

var _ Selector = &MockSelector{} // Compile-time check

// Select implements the Selector interface.
func (m *MockSelector) Select(label string, choices []string) ([]string, error) {
	args := m.Called(label, choices)
	chosen, _ := args.Get(0).([]string)
	return chosen, args.Error(1)
}

// Input implements the Selector interface.
func (m *MockSelector) Input(label string) (string, error) {
	args := m.Called(label)
	return args.String(0), args.Error(1)
}

// MockExportSink is a mock implementation of ExportSink for testing.
type MockExportSink struct {
	mock.Mock
}

var _ ExportSink = &MockExportSink{} // Compile-time check

// WriteExport implements the ExportSink interface.
func (m *MockExportSink) WriteExport(export schema.GroupedExport) (string, error) {
	args := m.Called(export)
	return args.String(0), args.Error(1)
}
