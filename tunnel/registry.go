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

package tunnel

import (
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	hcuuid "github.com/hashicorp/go-uuid"
)

// Registry is the process-wide mapping from opaque connection id to
// Connection. create/lookup/remove must be safe under concurrent access;
// handles returned by Lookup/Create stay valid for the caller's use even
// across a concurrent Remove, since removal only unlinks the map entry —
// it does not itself close the connection.
type Registry interface {
	Create(socket net.Conn) Connection
	Lookup(id string) (Connection, bool)
	Remove(id string)
	Len() int
	Range(f func(Connection) bool)
	// GC closes and removes every connection whose LastActivity is older
	// than idle, returning the number evicted.
	GC(idle time.Duration) int
}

// Option configures a Registry returned by New.
type Option func(*registry)

// WithUUID mints ids via hashicorp/go-uuid instead of the default
// monotonic-counter scheme.
func WithUUID() Option {
	return func(r *registry) { r.uuid = true }
}

type registry struct {
	conns   sync.Map // string -> *record
	counter atomic.Uint64
	uuid    bool
}

// New returns an empty Registry.
func New(opts ...Option) Registry {
	r := &registry{}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *registry) nextID() string {
	if r.uuid {
		if id, err := hcuuid.GenerateUUID(); err == nil {
			return id
		}
	}
	return strconv.FormatUint(r.counter.Add(1), 16)
}

func (r *registry) Create(socket net.Conn) Connection {
	id := r.nextID()
	for {
		if _, loaded := r.conns.LoadOrStore(id, newRecord(id, socket)); !loaded {
			break
		}
		id = r.nextID()
	}
	rec, _ := r.conns.Load(id)
	return rec.(*record)
}

func (r *registry) Lookup(id string) (Connection, bool) {
	v, ok := r.conns.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*record), true
}

func (r *registry) Remove(id string) {
	r.conns.Delete(id)
}

func (r *registry) Len() int {
	n := 0
	r.conns.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (r *registry) Range(f func(Connection) bool) {
	r.conns.Range(func(_, v interface{}) bool {
		return f(v.(*record))
	})
}

func (r *registry) GC(idle time.Duration) int {
	evicted := 0
	cutoff := time.Now().Add(-idle)

	r.conns.Range(func(k, v interface{}) bool {
		rec := v.(*record)
		if rec.LastActivity().Before(cutoff) {
			r.conns.Delete(k)
			_ = rec.Close()
			evicted++
		}
		return true
	})

	return evicted
}
