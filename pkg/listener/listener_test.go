package listener

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gate-protocol/listener-go/internal/testharness/hostsim"
	"github.com/gate-protocol/listener-go/pkg/channel/mocks"
	"github.com/gate-protocol/listener-go/pkg/wire"
)

func TestBindSuccess(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 12)

	lis, err := Bind(context.Background(), host, Config{Port: 443, Prefix: "www"})
	require.NoError(t, err)

	assert.Equal(t, "www.example.test", lis.Hostname())
	assert.Equal(t, uint16(443), lis.Port())

	// The request on the wire carries the fixed size tag, prefix and port.
	calls := host.Calls()
	require.Len(t, calls, 1)
	req, err := wire.DecodeBindRequest(calls[0])
	require.NoError(t, err)
	assert.Equal(t, wire.AcceptSizeBasic, req.AcceptSize)
	assert.Equal(t, "www", req.Name)
	assert.Equal(t, uint16(443), req.Port)
}

func TestBindAlreadyBound(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindError(wire.BindCodeAlreadyBound)

	_, err := Bind(context.Background(), host, Config{Port: 443})
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, BindAlreadyBound, bindErr.Kind)
	assert.Equal(t, "already bound", bindErr.Error())
}

func TestBindErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		code wire.BindCode
		kind BindErrorKind
	}{
		{name: "too many bindings", code: wire.BindCodeTooManyBindings, kind: BindTooManyBindings},
		{name: "already bound", code: wire.BindCodeAlreadyBound, kind: BindAlreadyBound},
		{name: "invalid name", code: wire.BindCodeInvalidName, kind: BindInvalidName},
		{name: "name too long", code: wire.BindCodeNameTooLong, kind: BindNameTooLong},
		{name: "unsupported port", code: wire.BindCodeUnsupportedPort, kind: BindUnsupportedPort},
		{name: "unknown code", code: wire.BindCode(99), kind: BindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := hostsim.NewScripted()
			host.QueueBindError(tt.code)

			_, err := Bind(context.Background(), host, Config{Port: 443})
			var bindErr *BindError
			require.ErrorAs(t, err, &bindErr)
			assert.Equal(t, tt.kind, bindErr.Kind)
			assert.Equal(t, tt.code, bindErr.Code)
		})
	}
}

func TestBindUnsupportedHost(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindEmpty()

	_, err := Bind(context.Background(), host, Config{Port: 443})
	require.ErrorIs(t, err, wire.ErrBindUnsupported)
}

func TestBindCallFailure(t *testing.T) {
	ch := mocks.NewChannel(t)
	callErr := errors.New("channel down")
	ch.On("Call", mock.Anything, mock.Anything).Return(nil, callErr)

	_, err := Bind(context.Background(), ch, Config{Port: 443})
	require.ErrorIs(t, err, callErr)
}

func TestBindBacklogBufferHint(t *testing.T) {
	ch := mocks.NewChannel(t)
	resp, err := wire.EncodeBindResponse(wire.Binding{Hostname: "h", Port: 1, ListenID: 3}, wire.BindCodeNone)
	require.NoError(t, err)
	ch.On("Call", mock.Anything, mock.Anything).Return(resp, nil)
	ch.On("InputStream", uint32(3), 5*wire.RecordSize).Return(mocks.NewRecvStream(t))

	_, err = Bind(context.Background(), ch, Config{Port: 1, Backlog: 5})
	require.NoError(t, err)
}

func TestAcceptSuccess(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)
	host.QueueAccept(7, netip.MustParseAddrPort("127.0.0.1:51000"))

	lis, err := Bind(context.Background(), host, Config{Port: 443, Prefix: "www"})
	require.NoError(t, err)

	conn, err := lis.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddrPort("127.0.0.1:51000"), conn.PeerAddr)
}

func TestAcceptFragmentationInvariance(t *testing.T) {
	for _, fragment := range []int{0, wire.RecordSize / 2, 1} {
		host := hostsim.NewScripted()
		host.Fragment = fragment
		host.QueueBindSuccess("www.example.test", 443, 1)
		host.QueueAccept(7, netip.MustParseAddrPort("127.0.0.1:51000"))

		lis, err := Bind(context.Background(), host, Config{Port: 443})
		require.NoError(t, err)

		conn, err := lis.Accept(context.Background())
		require.NoError(t, err, "fragment size %d", fragment)
		assert.Equal(t, netip.MustParseAddrPort("127.0.0.1:51000"), conn.PeerAddr,
			"fragment size %d", fragment)
	}
}

func TestAcceptRecordError(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)
	host.QueueRecord(wire.AcceptRecord{Error: wire.AcceptCode(-7)})

	lis, err := Bind(context.Background(), host, Config{Port: 443})
	require.NoError(t, err)

	_, err = lis.Accept(context.Background())
	var acceptErr *AcceptError
	require.ErrorAs(t, err, &acceptErr)
	assert.Equal(t, AcceptOther, acceptErr.Kind)
	assert.Equal(t, wire.AcceptCode(-7), acceptErr.Code)
	assert.False(t, IsClosed(err))
}

func TestAcceptHostClose(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)
	host.FinishAccepts()

	lis, err := Bind(context.Background(), host, Config{Port: 443})
	require.NoError(t, err)

	_, err = lis.Accept(context.Background())
	require.True(t, IsClosed(err), "expected closed, got %v", err)

	// Closed is sticky.
	_, err = lis.Accept(context.Background())
	require.True(t, IsClosed(err))
}

func TestAcceptHostCloseMidRecord(t *testing.T) {
	// Stream ends after a partial record: resolves Closed, never a
	// partial-data error.
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)
	host.QueueBytes(make([]byte, wire.RecordSize/2))
	host.FinishAccepts()

	lis, err := Bind(context.Background(), host, Config{Port: 443})
	require.NoError(t, err)

	_, err = lis.Accept(context.Background())
	require.True(t, IsClosed(err), "expected closed, got %v", err)
}

func TestAcceptContextCancel(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)

	lis, err := Bind(context.Background(), host, Config{Port: 443})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		_, err := lis.Accept(ctx)
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, IsClosed(err), "caller cancellation is not the Closed result")
	case <-time.After(time.Second):
		t.Fatal("accept did not resolve after context cancel")
	}
}

func TestAcceptBusy(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)

	lis, err := Bind(context.Background(), host, Config{Port: 443})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		close(started)
		lis.Accept(ctx)
	}()

	<-started
	time.Sleep(20 * time.Millisecond)
	_, err = lis.Accept(context.Background())
	require.ErrorIs(t, err, ErrAcceptBusy)

	cancel()
	<-done
}

func TestListenerClose(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)

	lis, err := Bind(context.Background(), host, Config{Port: 443})
	require.NoError(t, err)
	require.NoError(t, lis.Close())

	_, err = lis.Accept(context.Background())
	require.True(t, IsClosed(err))
}
