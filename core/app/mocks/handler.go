package mocks

import (
	"context"

	"sofie/core/app"

	"github.com/stretchr/testify/mock"
)

// Handler is a mock implementation of app.Handler
type Handler struct {
	mock.Mock
}

func (m *Handler) Handle(ctx context.Context, req *app.Request) (*app.Response, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*app.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}
