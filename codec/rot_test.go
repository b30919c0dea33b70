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

package codec_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/retund/retund/codec"
)

var _ = Describe("codec.NewROT", func() {
	var c codec.Codec

	BeforeEach(func() {
		c = codec.NewROT("s3cr3t-session-key")
	})

	It("round-trips arbitrary ASCII strings", func() {
		for _, s := range []string{"CONNECT", "127.0.0.1:54321", "", "a", "FAIL", "CLOSED"} {
			enc := c.Encode(s)
			dec, err := c.Decode(enc)
			Expect(err).ToNot(HaveOccurred())
			Expect(dec).To(Equal(s))
		}
	})

	It("produces an ASCII-safe token", func() {
		enc := c.Encode("hello world, this has spaces")
		for _, r := range enc {
			Expect(r).To(BeNumerically("<", 128))
		}
	})

	It("rejects a tampered token", func() {
		enc := c.Encode("CONNECT")
		_, err := c.Decode(enc + "!!!not-base64!!!")
		Expect(err).To(HaveOccurred())
	})

	It("never rejects its own output", func() {
		for i := 0; i < 50; i++ {
			enc := c.Encode("round-trip-input")
			_, err := c.Decode(enc)
			Expect(err).ToNot(HaveOccurred())
		}
	})
})
