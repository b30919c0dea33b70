/*
 * MIT License
 *
 * Copyright (c) 2023 Nicolas JUHEL
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

package tunnel_test

import (
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/retund/retund/tunnel"
)

func pipePair() (net.Conn, net.Conn) {
	return net.Pipe()
}

var _ = Describe("tunnel.Registry", func() {
	var reg tunnel.Registry

	BeforeEach(func() {
		reg = tunnel.New()
	})

	It("mints unique ids for concurrent Create calls", func() {
		const n = 100
		ids := make(chan string, n)
		var wg sync.WaitGroup

		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				local, remote := pipePair()
				_ = remote.Close()
				conn := reg.Create(local)
				ids <- conn.ID()
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[string]bool{}
		for id := range ids {
			Expect(seen[id]).To(BeFalse(), "duplicate id %q", id)
			seen[id] = true
		}
		Expect(seen).To(HaveLen(n))
	})

	It("Lookup finds a created connection and Remove unlinks it", func() {
		local, remote := pipePair()
		defer remote.Close()

		conn := reg.Create(local)
		found, ok := reg.Lookup(conn.ID())
		Expect(ok).To(BeTrue())
		Expect(found.ID()).To(Equal(conn.ID()))

		reg.Remove(conn.ID())
		_, ok = reg.Lookup(conn.ID())
		Expect(ok).To(BeFalse())
	})

	It("Lookup on an unknown id reports not found", func() {
		_, ok := reg.Lookup("nosuchid")
		Expect(ok).To(BeFalse())
	})

	It("GC evicts a connection idle past the ceiling", func() {
		local, remote := pipePair()
		defer remote.Close()

		conn := reg.Create(local)
		time.Sleep(20 * time.Millisecond)

		evicted := reg.GC(5 * time.Millisecond)
		Expect(evicted).To(Equal(1))

		_, ok := reg.Lookup(conn.ID())
		Expect(ok).To(BeFalse())
	})
})
