package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tenant-portal/internal/classifier"
	"tenant-portal/internal/identity"
)

type IdentityMock struct {
	mock.Mock
}

func (m *IdentityMock) SignUp(ctx context.Context, email, password string) (identity.Account, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(identity.Account), args.Error(1)
}

func (m *IdentityMock) SignIn(ctx context.Context, email, password string) (identity.Account, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(identity.Account), args.Error(1)
}

func (m *IdentityMock) UpdateAccount(ctx context.Context, idToken, email, password string) error {
	args := m.Called(ctx, idToken, email, password)
	return args.Error(0)
}

type AdvisorMock struct {
	mock.Mock
}

func (m *AdvisorMock) Advice(ctx context.Context, tenant, state, label string) string {
	args := m.Called(ctx, tenant, state, label)
	return args.String(0)
}

func (m *AdvisorMock) CureDays(ctx context.Context, state, label string) int {
	args := m.Called(ctx, state, label)
	return args.Int(0)
}

type ClassifierMock struct {
	mock.Mock
}

func (m *ClassifierMock) Classify(ctx context.Context, image []byte) (classifier.Prediction, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(classifier.Prediction), args.Error(1)
}

type PhotoStoreMock struct {
	mock.Mock
}

func (m *PhotoStoreMock) Save(ctx context.Context, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *PhotoStoreMock) Owns(url string) bool {
	return m.Called(url).Bool(0)
}

func (m *PhotoStoreMock) Close() error {
	return m.Called().Error(0)
}
