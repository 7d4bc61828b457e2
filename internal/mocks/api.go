// Package mocks provides testify mocks for the platform API.
package mocks

import (
	"context"

	"graphlearn/internal/client"
	"graphlearn/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockAPI mocks every call of client.API.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.Token, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Token), args.Error(1)
}

func (m *MockAPI) ListGraphs(ctx context.Context, q client.GraphQuery) (*domain.GraphList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GraphList), args.Error(1)
}

func (m *MockAPI) CreateGraph(ctx context.Context, in domain.GraphCreate) (*domain.GraphSummary, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GraphSummary), args.Error(1)
}

func (m *MockAPI) GetGraph(ctx context.Context, graphID string) (*domain.Graph, error) {
	args := m.Called(ctx, graphID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Graph), args.Error(1)
}

func (m *MockAPI) CreateNode(ctx context.Context, graphID string, in domain.NodeCreate) (*domain.Node, error) {
	args := m.Called(ctx, graphID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockAPI) CreateEdge(ctx context.Context, graphID string, in domain.EdgeCreate) (*domain.Edge, error) {
	args := m.Called(ctx, graphID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Edge), args.Error(1)
}

func (m *MockAPI) GetNode(ctx context.Context, nodeID string) (*domain.Node, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockAPI) UpdateNode(ctx context.Context, nodeID string, in domain.NodeUpdate) (*domain.Node, error) {
	args := m.Called(ctx, nodeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockAPI) DeleteNode(ctx context.Context, nodeID string) error {
	args := m.Called(ctx, nodeID)
	return args.Error(0)
}

func (m *MockAPI) DeleteEdge(ctx context.Context, edgeID string) error {
	args := m.Called(ctx, edgeID)
	return args.Error(0)
}

func (m *MockAPI) MarkLearned(ctx context.Context, nodeID string) error {
	args := m.Called(ctx, nodeID)
	return args.Error(0)
}

func (m *MockAPI) UnmarkLearned(ctx context.Context, nodeID string) error {
	args := m.Called(ctx, nodeID)
	return args.Error(0)
}

func (m *MockAPI) Profile(ctx context.Context) (*domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockAPI) RateGraph(ctx context.Context, graphID string, value domain.Vote) error {
	args := m.Called(ctx, graphID, value)
	return args.Error(0)
}

func (m *MockAPI) ListComments(ctx context.Context, graphID string, skip, limit int) ([]domain.Comment, error) {
	args := m.Called(ctx, graphID, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockAPI) AddComment(ctx context.Context, graphID, content string) (*domain.Comment, error) {
	args := m.Called(ctx, graphID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}
