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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/retund/retund/tunnel"
)

var _ = Describe("tunnel.Connection (record)", func() {
	var (
		reg   tunnel.Registry
		conn  tunnel.Connection
		local net.Conn
	)

	BeforeEach(func() {
		reg = tunnel.New()
		var remote net.Conn
		local, remote = pipePair()
		DeferCleanup(func() { _ = remote.Close() })
		conn = reg.Create(local)
	})

	It("drains appended bytes in FIFO order across multiple chunks", func() {
		conn.AppendInbound([]byte("hello "))
		conn.AppendInbound([]byte("world"))

		out, terminal := conn.DrainInbound(1024)
		Expect(terminal).To(BeFalse())
		Expect(string(out)).To(Equal("hello world"))
	})

	It("respects the max argument, leaving the remainder queued", func() {
		conn.AppendInbound([]byte("abcdef"))

		first, terminal := conn.DrainInbound(3)
		Expect(terminal).To(BeFalse())
		Expect(string(first)).To(Equal("abc"))

		second, terminal := conn.DrainInbound(3)
		Expect(terminal).To(BeFalse())
		Expect(string(second)).To(Equal("def"))
	})

	It("returns terminal once empty and the peer has closed", func() {
		out, terminal := conn.DrainInbound(64)
		Expect(out).To(BeEmpty())
		Expect(terminal).To(BeFalse())

		conn.MarkPeerClosed()

		out, terminal = conn.DrainInbound(64)
		Expect(out).To(BeEmpty())
		Expect(terminal).To(BeTrue())
	})

	It("updates LastActivity on append", func() {
		before := conn.LastActivity()
		time.Sleep(5 * time.Millisecond)
		conn.AppendInbound([]byte("x"))
		Expect(conn.LastActivity()).To(BeTemporally(">", before))
	})
})
