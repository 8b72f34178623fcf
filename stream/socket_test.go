package stream

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	done := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			done <- c
		}
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server = <-done
	t.Cleanup(func() { server.Close() })
	return client, server
}

// waitAvailable polls until the source reports at least n queued bytes;
// loopback delivery is fast but still asynchronous.
func waitAvailable(t *testing.T, ss *SocketSource, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if ss.Available() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("source never reported %d available bytes", n)
}

func TestSocketStreamRoundTrip(t *testing.T) {
	client, server := tcpPair(t)

	w := New(NewSocketSource(client))
	w.WriteUint64(0x0102030405060708)
	w.WriteString("over the wire")
	require.NoError(t, w.Flush())

	r := New(NewSocketSource(server))
	var v uint64
	r.ReadUint64(&v)
	str := r.ReadString()
	require.NoError(t, r.Err())
	assert.Equal(t, uint64(0x0102030405060708), v)
	assert.Equal(t, "over the wire", str)
}

func TestSocketPeekDoesNotConsume(t *testing.T) {
	client, server := tcpPair(t)
	ss := NewSocketSource(server)

	_, err := client.Write([]byte{0xAA, 0xBB, 0xCC})
	require.NoError(t, err)
	waitAvailable(t, ss, 3)

	p := make([]byte, 3)
	n, err := ss.Peek(p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, p)
	assert.Equal(t, 3, ss.Available(), "peek left the queue intact")

	n, err = ss.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, p)
}

func TestSocketSkipNeverBlocks(t *testing.T) {
	client, server := tcpPair(t)
	ss := NewSocketSource(server)

	_, err := client.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	waitAvailable(t, ss, 4)

	// ask for more than is queued; only the queued part goes away
	require.NoError(t, ss.Skip(100))

	_, err = client.Write([]byte{5})
	require.NoError(t, err)

	p := make([]byte, 1)
	n, err := ss.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(5), p[0])
}

func TestSocketDatagramPeer(t *testing.T) {
	serverConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer serverConn.Close()

	clientConn, err := net.DialUDP("udp", nil, serverConn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer clientConn.Close()

	ss := NewSocketSource(serverConn)
	require.True(t, ss.Datagram())
	assert.Nil(t, ss.Peer(), "no peer before the first datagram")

	_, err = clientConn.Write([]byte("ping"))
	require.NoError(t, err)

	p := make([]byte, 16)
	n, err := ss.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(p[:n]))
	require.NotNil(t, ss.Peer())

	// replies go back to the recorded peer
	n, err = ss.Write([]byte("pong"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	buf := make([]byte, 16)
	require.NoError(t, clientConn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, err = clientConn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(buf[:n]))
}

func TestSocketClosedByOwner(t *testing.T) {
	client, server := tcpPair(t)
	ss := NewSocketSource(server)
	require.NoError(t, client.Close())
	require.NoError(t, server.Close())

	_, err := ss.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, ss.Good())
}

func TestSocketSourceCloseLeavesConn(t *testing.T) {
	client, server := tcpPair(t)
	ss := NewSocketSource(server)
	require.NoError(t, ss.Close())

	_, err := ss.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)

	// the conn itself still works for its owner
	_, err = client.Write([]byte{1})
	assert.NoError(t, err)
}
