package stream

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// SocketSource is a Source over a connected or datagram socket. The
// connection is borrowed, never closed by the source; the owner closing it
// from another goroutine is the way to abort a blocked read.
//
// Peeking uses MSG_PEEK on the raw descriptor and Available uses SIOCINQ;
// both degrade gracefully when the connection exposes no descriptor (for
// example net.Pipe). For datagram sockets, peek and skip are lossy and
// best-effort, and every read retains the sender as the last peer.
type SocketSource struct {
	conn     net.Conn
	pc       net.PacketConn // non-nil in datagram mode
	raw      syscall.RawConn
	peer     net.Addr
	closed   bool
	datagram bool
}

// NewSocketSource wraps conn. Datagram mode is detected from the address
// network ("udp", "unixgram", "ip").
func NewSocketSource(conn net.Conn) *SocketSource {
	ss := &SocketSource{conn: conn}
	network := ""
	if la := conn.LocalAddr(); la != nil {
		network = la.Network()
	}
	if strings.HasPrefix(network, "udp") || strings.HasSuffix(network, "gram") ||
		strings.HasPrefix(network, "ip") {
		ss.datagram = true
		if pc, ok := conn.(net.PacketConn); ok {
			ss.pc = pc
		}
	}
	if sc, ok := conn.(syscall.Conn); ok {
		if rc, err := sc.SyscallConn(); err == nil {
			ss.raw = rc
		}
	}
	return ss
}

// Good reports whether the socket is still usable.
func (ss *SocketSource) Good() bool { return ss.conn != nil && !ss.closed }

// Datagram reports whether the source operates in datagram mode.
func (ss *SocketSource) Datagram() bool { return ss.datagram }

// Peer returns the address of the last datagram sender, or nil.
func (ss *SocketSource) Peer() net.Addr { return ss.peer }

func (ss *SocketSource) mapErr(err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	if errors.Is(err, net.ErrClosed) {
		ss.closed = true
		return ErrClosed
	}
	return err
}

// Write sends a block over the socket. In datagram mode with a known peer
// and no connected destination, the block is sent back to the last peer.
func (ss *SocketSource) Write(p []byte) (int, error) {
	if !ss.Good() {
		return 0, ErrClosed
	}
	if ss.pc != nil && ss.peer != nil {
		if n, err := ss.pc.WriteTo(p, ss.peer); err == nil {
			return n, nil
		}
		// fall through: the socket may be connected, WriteTo then fails
	}
	n, err := ss.conn.Write(p)
	return n, ss.mapErr(err)
}

// Flush is a no-op; the kernel owns socket send buffering.
func (ss *SocketSource) Flush() error { return nil }

// Read pulls bytes from the OS receive queue. Datagram reads record the
// sender address.
func (ss *SocketSource) Read(p []byte) (int, error) {
	if !ss.Good() {
		return 0, ErrClosed
	}
	if ss.pc != nil {
		n, addr, err := ss.pc.ReadFrom(p)
		if addr != nil {
			ss.peer = addr
		}
		return n, ss.mapErr(err)
	}
	n, err := ss.conn.Read(p)
	return n, ss.mapErr(err)
}

// Peek copies queued bytes without consuming them, using MSG_PEEK. Returns
// (0, nil) when no data is queued yet, and ErrPeekUnsupported when the
// connection exposes no raw descriptor.
func (ss *SocketSource) Peek(p []byte) (int, error) {
	if !ss.Good() {
		return 0, ErrClosed
	}
	if ss.raw == nil {
		return 0, ErrPeekUnsupported
	}
	var n int
	var rerr error
	cerr := ss.raw.Control(func(fd uintptr) {
		k, _, err := unix.Recvfrom(int(fd), p, unix.MSG_PEEK|unix.MSG_DONTWAIT)
		if err != nil {
			if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
				rerr = err
			}
			return
		}
		if k > 0 {
			n = k
		}
	})
	if cerr != nil {
		return 0, ss.mapErr(cerr)
	}
	return n, rerr
}

// Available reports the kernel receive-queue byte count via SIOCINQ, or -1
// when it cannot be queried. For datagrams this is the size of the next
// datagram.
func (ss *SocketSource) Available() int {
	if !ss.Good() || ss.raw == nil {
		return -1
	}
	avail := -1
	_ = ss.raw.Control(func(fd uintptr) {
		if n, err := unix.IoctlGetInt(int(fd), unix.SIOCINQ); err == nil {
			avail = n
		}
	})
	return avail
}

// Skip discards queued bytes by reading and dropping them. Only bytes that
// are immediately available are discarded; Skip never blocks waiting for
// more.
func (ss *SocketSource) Skip(n int) error {
	if !ss.Good() {
		return ErrClosed
	}
	if n <= 0 {
		return nil
	}
	if a := ss.Available(); a >= 0 && a < n {
		n = a
	}
	if n == 0 {
		return nil
	}
	_, err := discardFrom(ss, n)
	return err
}

// Close marks the source unusable. The borrowed connection is left open for
// its owner to close.
func (ss *SocketSource) Close() error {
	ss.closed = true
	return nil
}
