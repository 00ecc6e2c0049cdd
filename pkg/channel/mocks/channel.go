// Package mocks provides testify mocks for the channel interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gate-protocol/listener-go/pkg/channel"
)

// Channel is a mock implementation of channel.Channel.
type Channel struct {
	mock.Mock
}

// NewChannel creates a new Channel mock with expectations asserted at
// test cleanup.
func NewChannel(t interface {
	mock.TestingT
	Cleanup(func())
}) *Channel {
	m := &Channel{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Call provides a mock function.
func (m *Channel) Call(ctx context.Context, req []byte) ([]byte, error) {
	args := m.Called(ctx, req)
	var resp []byte
	if args.Get(0) != nil {
		resp = args.Get(0).([]byte)
	}
	return resp, args.Error(1)
}

// InputStream provides a mock function.
func (m *Channel) InputStream(id uint32, bufsize int) channel.RecvStream {
	args := m.Called(id, bufsize)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(channel.RecvStream)
}

// Stream provides a mock function.
func (m *Channel) Stream(id uint32) channel.Stream {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(channel.Stream)
}

// RecvStream is a mock implementation of channel.RecvStream.
type RecvStream struct {
	mock.Mock
}

// NewRecvStream creates a new RecvStream mock with expectations
// asserted at test cleanup.
func NewRecvStream(t interface {
	mock.TestingT
	Cleanup(func())
}) *RecvStream {
	m := &RecvStream{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Recv provides a mock function.
func (m *RecvStream) Recv(ctx context.Context, want int, deliver channel.DeliverFunc) error {
	args := m.Called(ctx, want, deliver)
	return args.Error(0)
}

// Close provides a mock function.
func (m *RecvStream) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Compile-time interface satisfaction checks.
var (
	_ channel.Channel    = (*Channel)(nil)
	_ channel.RecvStream = (*RecvStream)(nil)
)
