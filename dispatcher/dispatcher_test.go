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

package dispatcher_test

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	ginsdk "github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/retund/retund/codec"
	"github.com/retund/retund/dispatcher"
	"github.com/retund/retund/tunnel"
)

const sessionKey = "s3cr3t-session-key"

func newTestEngine(cdc codec.Codec, reg tunnel.Registry) *ginsdk.Engine {
	disp := dispatcher.New(dispatcher.Config{
		SessionKey:     sessionKey,
		Codec:          cdc,
		Registry:       reg,
		ConnectTimeout: time.Second,
	})

	engine := ginsdk.New()
	engine.Any("/*path", disp.Handler())
	return engine
}

func doRequest(engine *ginsdk.Engine, cdc codec.Codec, method, cmd, target string, body []byte, badCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/tunnel", bytes.NewReader(body))

	cookieVal := cdc.Encode(sessionKey)
	if badCookie {
		cookieVal = cdc.Encode("wrong-key")
	}
	req.AddCookie(&http.Cookie{Name: dispatcher.CookieName, Value: cookieVal})

	if cmd != "" {
		req.Header.Set(dispatcher.HeaderCmd, cdc.Encode(cmd))
	}
	if target != "" {
		req.Header.Set(dispatcher.HeaderTarget, cdc.Encode(target))
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(rec *httptest.ResponseRecorder, cdc codec.Codec) string {
	raw := rec.Header().Get(dispatcher.HeaderStatus)
	if raw == "" {
		return ""
	}
	s, err := cdc.Decode(raw)
	Expect(err).ToNot(HaveOccurred())
	return s
}

var _ = Describe("Dispatcher", func() {
	var (
		cdc codec.Codec
		reg tunnel.Registry
		eng *ginsdk.Engine
	)

	BeforeEach(func() {
		cdc = codec.NewROT(sessionKey)
		reg = tunnel.New()
		eng = newTestEngine(cdc, reg)
	})

	It("S1: POLL returns OK and the decoy body", func() {
		rec := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbPoll, "", nil, false)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(dispatcher.DecoyBody))
		Expect(decodeStatus(rec, cdc)).To(Equal(dispatcher.StatusOK))
	})

	It("S2: CONNECT to a listener that accepts and closes yields an id, then READ drains to CLOSED", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()

		go func() {
			c, err := ln.Accept()
			if err == nil {
				c.Close()
			}
		}()

		rec := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbConnect, ln.Addr().String(), nil, false)
		Expect(rec.Code).To(Equal(http.StatusOK))

		id := decodeStatus(rec, cdc)
		Expect(id).ToNot(BeEmpty())
		Expect(id).ToNot(Equal(dispatcher.StatusFail))

		Eventually(func() string {
			rec := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbRead, id, nil, false)
			return decodeStatus(rec, cdc)
		}, 2*time.Second, 10*time.Millisecond).Should(Equal(dispatcher.StatusClosed))

		// the CLOSED drain evicted the id, so any further READ fails
		rec = doRequest(eng, cdc, http.MethodGet, dispatcher.VerbRead, id, nil, false)
		Expect(decodeStatus(rec, cdc)).To(Equal(dispatcher.StatusFail))
	})

	It("S3: FORWARD then READ returns the echoed bytes", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()

		go func() {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			defer c.Close()
			buf := make([]byte, 4096)
			for {
				n, err := c.Read(buf)
				if n > 0 {
					_, _ = c.Write(buf[:n])
				}
				if err != nil {
					return
				}
			}
		}()

		rec := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbConnect, ln.Addr().String(), nil, false)
		id := decodeStatus(rec, cdc)
		Expect(id).ToNot(BeEmpty())

		rec = doRequest(eng, cdc, http.MethodPost, dispatcher.VerbForward, id, []byte("hello"), false)
		Expect(decodeStatus(rec, cdc)).To(Equal(dispatcher.StatusOK))

		var got []byte
		Eventually(func() string {
			rec := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbRead, id, nil, false)
			got = append(got, rec.Body.Bytes()...)
			return string(got)
		}, 2*time.Second, 10*time.Millisecond).Should(Equal("hello"))
	})

	It("S4: FORWARD to an unknown id returns FAIL and leaves the registry unchanged", func() {
		before := reg.Len()

		rec := doRequest(eng, cdc, http.MethodPost, dispatcher.VerbForward, "nosuchid", []byte("x"), false)

		Expect(decodeStatus(rec, cdc)).To(Equal(dispatcher.StatusFail))
		Expect(reg.Len()).To(Equal(before))
	})

	It("S5: a wrong cookie yields the decoy with no protocol action", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()

		var accepted atomic.Int32
		go func() {
			for {
				c, err := ln.Accept()
				if err != nil {
					return
				}
				accepted.Add(1)
				c.Close()
			}
		}()

		rec := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbConnect, ln.Addr().String(), nil, true)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(dispatcher.DecoyBody))
		// indistinguishable from a POLL response
		Expect(decodeStatus(rec, cdc)).To(Equal(dispatcher.StatusOK))

		Consistently(accepted.Load, 50*time.Millisecond, 10*time.Millisecond).Should(Equal(int32(0)))
	})

	It("S6: CONNECT to a black-hole address fails within the configured timeout", func() {
		start := time.Now()
		rec := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbConnect, "203.0.113.1:9", nil, false)

		Expect(decodeStatus(rec, cdc)).To(Equal(dispatcher.StatusFail))
		Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
	})

	It("idempotent DISCONNECT: unknown and repeated ids produce the same response", func() {
		first := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbDisconnect, "never-allocated", nil, false)
		second := doRequest(eng, cdc, http.MethodGet, dispatcher.VerbDisconnect, "never-allocated", nil, false)

		Expect(decodeStatus(first, cdc)).To(Equal(dispatcher.StatusOK))
		Expect(decodeStatus(second, cdc)).To(Equal(dispatcher.StatusOK))
	})
})
