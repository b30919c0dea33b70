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

var _ = Describe("tunnel.RunPump", func() {
	var (
		reg    tunnel.Registry
		conn   tunnel.Connection
		remote net.Conn
	)

	cfg := tunnel.PumpConfig{
		ScratchSize:  4096,
		SoftDeadline: 20 * time.Millisecond,
		HighWater:    1 << 20,
		LowWater:     1 << 18,
		PausePoll:    5 * time.Millisecond,
	}

	BeforeEach(func() {
		reg = tunnel.New()
		var local net.Conn
		local, remote = net.Pipe()
		conn = reg.Create(local)
		go tunnel.RunPump(conn, cfg)
	})

	It("moves bytes written on the socket into the inbound queue", func() {
		_, err := remote.Write([]byte("ping"))
		Expect(err).ToNot(HaveOccurred())

		Eventually(func() string {
			out, _ := conn.DrainInbound(1024)
			return string(out)
		}, time.Second, 5*time.Millisecond).Should(Equal("ping"))
	})

	It("marks the peer closed when the remote side closes", func() {
		Expect(remote.Close()).To(Succeed())

		Eventually(conn.ClosedByPeer, time.Second, 5*time.Millisecond).Should(BeTrue())
	})

	It("reports the record closed once Close() is called on it", func() {
		Expect(conn.Close()).To(Succeed())

		Eventually(func() bool {
			return conn.Closed()
		}, time.Second, 5*time.Millisecond).Should(BeTrue())
	})
})
