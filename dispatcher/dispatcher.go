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

package dispatcher

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retund/retund/codec"
	liblog "github.com/retund/retund/logger"
	"github.com/retund/retund/metrics"
	"github.com/retund/retund/tunnel"
)

// Config wires the dispatcher's collaborators.
type Config struct {
	// SessionKey is the shared secret the auth cookie must decode to.
	SessionKey string
	Codec      codec.Codec
	Registry   tunnel.Registry

	// ReadCap bounds how many bytes a single READ drains. Defaults to
	// DefaultReadCap.
	ReadCap int
	// ConnectTimeout bounds CONNECT's outbound dial. Defaults to
	// tunnel.DefaultConnectTimeout.
	ConnectTimeout time.Duration
	// Pump configures every read pump this dispatcher spawns on CONNECT.
	Pump tunnel.PumpConfig

	// Metrics is optional; a nil value disables metric recording.
	Metrics *metrics.Collector
	// Logger defaults to logger.Default() when nil.
	Logger liblog.Logger
}

// Dispatcher is the command dispatcher (component E).
type Dispatcher struct {
	cfg Config
}

// New returns a Dispatcher. Panics if cfg.Codec or cfg.Registry is nil —
// both are mandatory collaborators with no safe default.
func New(cfg Config) *Dispatcher {
	if cfg.Codec == nil || cfg.Registry == nil {
		panic("dispatcher: Codec and Registry are required")
	}
	if cfg.ReadCap <= 0 {
		cfg.ReadCap = DefaultReadCap
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = tunnel.DefaultConnectTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = liblog.Default()
	}
	return &Dispatcher{cfg: cfg}
}

// ServeHTTP is the raw net/http entry point for component F to call.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !d.authenticate(r) {
		// identical to a POLL response so a wrong cookie is not
		// fingerprintable on the wire
		d.respondStatus(w, StatusOK, DecoyBody)
		return
	}

	cmd, ok := d.decodeHeader(r, HeaderCmd)
	if !ok {
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	target, hasTarget := d.decodeHeader(r, HeaderTarget)

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.Command(cmd)
	}

	switch cmd {
	case VerbPoll:
		d.handlePoll(w)
	case VerbConnect:
		d.handleConnect(r.Context(), w, target, hasTarget)
	case VerbDisconnect:
		d.handleDisconnect(w, target, hasTarget)
	case VerbForward:
		d.handleForward(w, r.Body, target, hasTarget)
	case VerbRead:
		d.handleRead(w, target, hasTarget)
	default:
		d.respondStatus(w, StatusFail, DecoyBody)
	}
}

// Handler adapts this dispatcher to gin's router, with the auth gate
// running ahead of verb dispatch the same way router/auth's Authorization
// middleware gates requests before they reach a route handler.
func (d *Dispatcher) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		d.ServeHTTP(c.Writer, c.Request)
	}
}

func (d *Dispatcher) authenticate(r *http.Request) bool {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	decoded, err := d.cfg.Codec.Decode(ck.Value)
	if err != nil {
		return false
	}
	return decoded == d.cfg.SessionKey
}

func (d *Dispatcher) decodeHeader(r *http.Request, name string) (string, bool) {
	raw := r.Header.Get(name)
	if raw == "" {
		return "", false
	}
	decoded, err := d.cfg.Codec.Decode(raw)
	if err != nil {
		return "", false
	}
	return decoded, true
}

func (d *Dispatcher) respondStatus(w http.ResponseWriter, status, body string) {
	w.Header().Set(HeaderStatus, d.cfg.Codec.Encode(status))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (d *Dispatcher) respondRaw(w http.ResponseWriter, status string, body []byte) {
	w.Header().Set(HeaderStatus, d.cfg.Codec.Encode(status))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
