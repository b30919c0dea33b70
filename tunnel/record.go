/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package tunnel implements the connection record, registry and outbound
// read pump that make up the tunnel session engine: the state a CONNECT
// allocates, FORWARD/READ mutate, and DISCONNECT tears down.
package tunnel

import (
	"container/list"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	liberr "github.com/retund/retund/errors"
)

// Connection is the per-tunneled-TCP-connection handle the dispatcher and
// the read pump operate on. inbound is append-only by the pump and
// drain-only by the dispatcher; no other mutator touches it.
type Connection interface {
	ID() string
	AppendInbound(p []byte)
	DrainInbound(max int) (p []byte, terminal bool)
	InboundSize() int
	WriteOutbound(p []byte) error
	MarkPeerClosed()
	Close() error
	ClosedByPeer() bool
	Closed() bool
	LastActivity() time.Time
	Socket() net.Conn
}

type record struct {
	id     string
	socket net.Conn

	mu     sync.Mutex
	chunks *list.List
	size   int

	closedByPeer atomic.Bool
	closed       atomic.Bool
	lastActivity atomic.Int64
}

func newRecord(id string, socket net.Conn) *record {
	r := &record{
		id:     id,
		socket: socket,
		chunks: list.New(),
	}
	r.touch()
	return r
}

func (r *record) ID() string       { return r.id }
func (r *record) Socket() net.Conn { return r.socket }

func (r *record) touch() {
	r.lastActivity.Store(time.Now().UnixNano())
}

func (r *record) LastActivity() time.Time {
	return time.Unix(0, r.lastActivity.Load())
}

// AppendInbound copies p and appends it to the inbound queue. Called only
// by this record's owning read pump.
func (r *record) AppendInbound(p []byte) {
	if len(p) == 0 {
		return
	}
	cp := make([]byte, len(p))
	copy(cp, p)

	r.mu.Lock()
	r.chunks.PushBack(cp)
	r.size += len(cp)
	r.mu.Unlock()

	r.touch()
}

// DrainInbound removes and returns up to max bytes from the inbound queue.
// When the queue is empty and the peer has closed, terminal is true.
func (r *record) DrainInbound(max int) (p []byte, terminal bool) {
	if max <= 0 {
		max = 1
	}

	r.mu.Lock()
	out := make([]byte, 0, max)
	for r.chunks.Len() > 0 && len(out) < max {
		front := r.chunks.Front()
		chunk := front.Value.([]byte)

		remaining := max - len(out)
		if len(chunk) <= remaining {
			out = append(out, chunk...)
			r.size -= len(chunk)
			r.chunks.Remove(front)
			continue
		}

		out = append(out, chunk[:remaining]...)
		r.size -= remaining
		front.Value = chunk[remaining:]
	}
	r.mu.Unlock()

	if len(out) == 0 && r.ClosedByPeer() {
		return out, true
	}
	return out, false
}

// InboundSize returns the current number of buffered, undrained bytes.
func (r *record) InboundSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// WriteOutbound writes p to the socket in full, retrying short writes.
func (r *record) WriteOutbound(p []byte) error {
	if r.closed.Load() {
		return liberr.New(liberr.ErrorDeadConnection)
	}
	written := 0
	for written < len(p) {
		n, err := r.socket.Write(p[written:])
		if err != nil {
			return liberr.Make(liberr.ErrorDeadConnection, err)
		}
		written += n
	}
	r.touch()
	return nil
}

// MarkPeerClosed records that the read pump observed EOF or a read error.
// No further appends may happen after this.
func (r *record) MarkPeerClosed() {
	r.closedByPeer.Store(true)
}

func (r *record) ClosedByPeer() bool {
	return r.closedByPeer.Load()
}

func (r *record) Closed() bool {
	return r.closed.Load()
}

// Close shuts down the socket's read half (falling back to a full close
// when the concrete type does not support half-close) so a pump blocked
// in Read returns promptly, then closes the socket fully.
func (r *record) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	if tc, ok := r.socket.(interface{ CloseRead() error }); ok {
		_ = tc.CloseRead()
	}
	return r.socket.Close()
}

var _ io.Closer = (*record)(nil)
