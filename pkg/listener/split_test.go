package listener

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gate-protocol/listener-go/internal/testharness/hostsim"
	"github.com/gate-protocol/listener-go/pkg/wire"
)

func bindSplit(t *testing.T, host *hostsim.Scripted) (*Acceptor, *CloseHandle) {
	t.Helper()
	host.QueueBindSuccess("www.example.test", 443, 1)

	lis, err := Bind(context.Background(), host, Config{Port: 443, Prefix: "www"})
	require.NoError(t, err)

	acceptor, closer, err := lis.Split()
	require.NoError(t, err)
	return acceptor, closer
}

func TestSplitConsumesListener(t *testing.T) {
	host := hostsim.NewScripted()
	host.QueueBindSuccess("www.example.test", 443, 1)

	lis, err := Bind(context.Background(), host, Config{Port: 443})
	require.NoError(t, err)

	acceptor, closer, err := lis.Split()
	require.NoError(t, err)
	require.NotNil(t, acceptor)
	require.NotNil(t, closer)

	// The original listener value is consumed.
	_, err = lis.Accept(context.Background())
	assert.ErrorIs(t, err, ErrListenerSplit)

	_, _, err = lis.Split()
	assert.ErrorIs(t, err, ErrListenerSplit)

	assert.ErrorIs(t, lis.Close(), ErrListenerSplit)
}

func TestSplitAcceptorCarriesBinding(t *testing.T) {
	host := hostsim.NewScripted()
	acceptor, _ := bindSplit(t, host)

	assert.Equal(t, "www.example.test", acceptor.Hostname())
	assert.Equal(t, uint16(443), acceptor.Port())
}

func TestSplitAcceptorAccepts(t *testing.T) {
	host := hostsim.NewScripted()
	acceptor, _ := bindSplit(t, host)
	host.QueueAccept(7, netip.MustParseAddrPort("[2001:db8::1]:51000"))

	conn, err := acceptor.Accept(context.Background())
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddrPort("[2001:db8::1]:51000"), conn.PeerAddr)
}

func TestCloseBeforeAccept(t *testing.T) {
	host := hostsim.NewScripted()
	acceptor, closer := bindSplit(t, host)

	require.NoError(t, closer.Close())

	// Resolves immediately, without suspending.
	done := make(chan error, 1)
	go func() {
		_, err := acceptor.Accept(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.True(t, IsClosed(err), "expected closed, got %v", err)
	case <-time.After(time.Second):
		t.Fatal("accept suspended after close")
	}
}

func TestCloseDuringAccept(t *testing.T) {
	host := hostsim.NewScripted()
	acceptor, closer := bindSplit(t, host)

	// Leave the accept suspended mid-record.
	host.QueueBytes(make([]byte, wire.RecordSize/2))

	result := make(chan error, 1)
	go func() {
		_, err := acceptor.Accept(context.Background())
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, closer.Close())

	select {
	case err := <-result:
		require.True(t, IsClosed(err), "expected closed, got %v", err)
	case <-time.After(time.Second):
		t.Fatal("accept did not resolve after close")
	}
}

func TestClosedIsSticky(t *testing.T) {
	host := hostsim.NewScripted()
	acceptor, closer := bindSplit(t, host)

	require.NoError(t, closer.Close())

	for i := 0; i < 3; i++ {
		_, err := acceptor.Accept(context.Background())
		require.True(t, IsClosed(err), "call %d: %v", i, err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	host := hostsim.NewScripted()
	_, closer := bindSplit(t, host)

	require.NoError(t, closer.Close())
	require.NoError(t, closer.Close())
}

func TestCloseConcurrentWithAccepts(t *testing.T) {
	host := hostsim.NewScripted()
	acceptor, closer := bindSplit(t, host)

	result := make(chan error, 1)
	go func() {
		_, err := acceptor.Accept(context.Background())
		result <- err
	}()

	go closer.Close()

	select {
	case err := <-result:
		require.True(t, IsClosed(err), "expected closed, got %v", err)
	case <-time.After(time.Second):
		t.Fatal("accept did not resolve")
	}
}
