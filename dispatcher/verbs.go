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
	"context"
	"io"
	"net/http"

	"github.com/retund/retund/tunnel"
)

func (d *Dispatcher) handlePoll(w http.ResponseWriter) {
	d.respondStatus(w, StatusOK, DecoyBody)
}

func (d *Dispatcher) handleConnect(ctx context.Context, w http.ResponseWriter, target string, hasTarget bool) {
	if !hasTarget {
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	socket, err := tunnel.Dial(ctx, target, d.cfg.ConnectTimeout)
	if err != nil {
		d.cfg.Logger.Warning("CONNECT to %q failed", err, target)
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	conn := d.cfg.Registry.Create(socket)
	go tunnel.RunPump(conn, d.cfg.Pump)

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.ConnectionOpened()
	}

	d.respondStatus(w, conn.ID(), DecoyBody)
}

func (d *Dispatcher) handleDisconnect(w http.ResponseWriter, id string, hasID bool) {
	if hasID {
		if conn, ok := d.cfg.Registry.Lookup(id); ok {
			d.cfg.Registry.Remove(id)
			_ = conn.Close()
			if d.cfg.Metrics != nil {
				d.cfg.Metrics.ConnectionClosed()
			}
		}
	}
	// DISCONNECT is idempotent: an unknown id yields the same response.
	d.respondStatus(w, StatusOK, DecoyBody)
}

func (d *Dispatcher) handleForward(w http.ResponseWriter, body io.ReadCloser, id string, hasID bool) {
	defer body.Close()

	if !hasID {
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	conn, ok := d.cfg.Registry.Lookup(id)
	if !ok {
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	payload, err := io.ReadAll(body)
	if err != nil {
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	if err := conn.WriteOutbound(payload); err != nil {
		d.cfg.Registry.Remove(id)
		_ = conn.Close()
		if d.cfg.Metrics != nil {
			d.cfg.Metrics.ConnectionClosed()
		}
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.BytesOut(len(payload))
	}
	d.respondStatus(w, StatusOK, DecoyBody)
}

func (d *Dispatcher) handleRead(w http.ResponseWriter, id string, hasID bool) {
	if !hasID {
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	conn, ok := d.cfg.Registry.Lookup(id)
	if !ok {
		d.respondStatus(w, StatusFail, DecoyBody)
		return
	}

	data, terminal := conn.DrainInbound(d.cfg.ReadCap)
	if terminal {
		d.cfg.Registry.Remove(id)
		_ = conn.Close()
		if d.cfg.Metrics != nil {
			d.cfg.Metrics.ConnectionClosed()
		}
		d.respondStatus(w, StatusClosed, DecoyBody)
		return
	}

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.BytesIn(len(data))
	}
	d.respondRaw(w, StatusOK, data)
}
