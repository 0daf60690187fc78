package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"school-activities/models"
)

// Ensure MockActivityAPI implements ActivityAPI
var _ ActivityAPI = (*MockActivityAPI)(nil)

// MockActivityAPI is a mock implementation for testing and extends `mock.Mock`
type MockActivityAPI struct {
	mock.Mock
}

// FetchCatalog (Mocked)
func (m *MockActivityAPI) FetchCatalog(ctx context.Context) (*models.Catalog, error) {
	args := m.Called(ctx)
	catalog, _ := args.Get(0).(*models.Catalog)
	return catalog, args.Error(1)
}

// Signup (Mocked)
func (m *MockActivityAPI) Signup(ctx context.Context, activity, email string) (*models.SignupResult, error) {
	args := m.Called(ctx, activity, email)
	result, _ := args.Get(0).(*models.SignupResult)
	return result, args.Error(1)
}

// Unregister (Mocked)
func (m *MockActivityAPI) Unregister(ctx context.Context, activity, email string) (*models.SignupResult, error) {
	args := m.Called(ctx, activity, email)
	result, _ := args.Get(0).(*models.SignupResult)
	return result, args.Error(1)
}
