package hostsim

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gate-protocol/listener-go/pkg/listener"
	"github.com/gate-protocol/listener-go/pkg/wire"
)

func TestLiveBindAndAccept(t *testing.T) {
	host := NewLive()
	defer host.Close()

	lis, err := listener.Bind(context.Background(), host, listener.Config{Port: 443, Prefix: "www"})
	require.NoError(t, err)

	assert.Equal(t, "www.localhost", lis.Hostname())
	require.NotZero(t, lis.Port())

	// Dial the simulated listener and exchange bytes end to end.
	type acceptResult struct {
		conn *listener.Conn
		err  error
	}
	accepted := make(chan acceptResult, 1)
	go func() {
		conn, err := lis.Accept(context.Background())
		accepted <- acceptResult{conn, err}
	}()

	client, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", lis.Port()))
	require.NoError(t, err)
	defer client.Close()

	var res acceptResult
	select {
	case res = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not resolve")
	}
	require.NoError(t, res.err)

	clientPort := client.LocalAddr().(*net.TCPAddr).Port
	assert.Equal(t, uint16(clientPort), res.conn.PeerAddr.Port())
	assert.True(t, res.conn.PeerAddr.Addr().IsLoopback())

	_, err = client.Write([]byte("hello"))
	require.NoError(t, err)
	buf := make([]byte, 5)
	_, err = res.conn.Stream.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	_, err = res.conn.Stream.Write([]byte("world"))
	require.NoError(t, err)
	_, err = client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf))
}

func TestLiveRejectsBadPrefix(t *testing.T) {
	host := NewLive()
	defer host.Close()

	tests := []struct {
		name   string
		prefix string
		kind   listener.BindErrorKind
	}{
		{name: "uppercase", prefix: "WWW", kind: listener.BindInvalidName},
		{name: "leading dash", prefix: "-x", kind: listener.BindInvalidName},
		{name: "reserved", prefix: "xn--x", kind: listener.BindInvalidName},
		{name: "too long", prefix: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", kind: listener.BindNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := listener.Bind(context.Background(), host, listener.Config{Port: 443, Prefix: tt.prefix})
			var bindErr *listener.BindError
			require.ErrorAs(t, err, &bindErr)
			assert.Equal(t, tt.kind, bindErr.Kind)
		})
	}
}

func TestLiveAlreadyBound(t *testing.T) {
	host := NewLive()
	defer host.Close()

	_, err := listener.Bind(context.Background(), host, listener.Config{Port: 443, Prefix: "dup"})
	require.NoError(t, err)

	_, err = listener.Bind(context.Background(), host, listener.Config{Port: 443, Prefix: "dup"})
	var bindErr *listener.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, listener.BindAlreadyBound, bindErr.Kind)
	assert.Equal(t, "already bound", bindErr.Error())
}

func TestLiveCloseHandleStopsListening(t *testing.T) {
	host := NewLive()
	defer host.Close()

	lis, err := listener.Bind(context.Background(), host, listener.Config{Port: 443})
	require.NoError(t, err)
	port := lis.Port()

	acceptor, closer, err := lis.Split()
	require.NoError(t, err)

	require.NoError(t, closer.Close())

	_, err = acceptor.Accept(context.Background())
	require.True(t, listener.IsClosed(err), "expected closed, got %v", err)

	// The OS listener is gone too; dials fail once the close lands.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 100*time.Millisecond)
		if err != nil {
			return true
		}
		conn.Close()
		return false
	}, 2*time.Second, 50*time.Millisecond)
}

func TestLiveSizeMismatch(t *testing.T) {
	host := NewLive()
	defer host.Close()

	// A request built by this library always carries the supported tag;
	// hand-roll a foreign one to exercise the host check.
	req, err := wire.Marshal(map[int]any{
		1: int(wire.FunctionBindTLS),
		2: map[int]any{1: 99, 3: 443},
	})
	require.NoError(t, err)

	resp, err := host.Call(context.Background(), req)
	require.NoError(t, err)

	defer func() {
		require.NotNil(t, recover(), "SIZE_NOT_SUPPORTED response must panic in the guest decoder")
	}()
	wire.DecodeBindResponse(resp)
}
