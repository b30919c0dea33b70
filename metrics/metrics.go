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

// Package metrics exposes the Prometheus instrumentation for the tunnel
// server: connection counts and byte/command throughput.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector owns this module's metric set and a private registry so it can
// be mounted under an authenticated route instead of the default global
// registry.
type Collector struct {
	registry *prometheus.Registry

	connectionsOpen  prometheus.Gauge
	connectionsTotal prometheus.Counter
	bytesInTotal     prometheus.Counter
	bytesOutTotal    prometheus.Counter
	commandsTotal    *prometheus.CounterVec
}

// New registers and returns a Collector.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		connectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "retund_connections_open",
			Help: "Number of tunneled TCP connections currently registered.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retund_connections_total",
			Help: "Total tunneled TCP connections ever opened.",
		}),
		bytesInTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retund_bytes_in_total",
			Help: "Total bytes delivered to clients via READ.",
		}),
		bytesOutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retund_bytes_out_total",
			Help: "Total bytes written to upstream sockets via FORWARD.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retund_commands_total",
			Help: "Total dispatcher commands handled, by verb.",
		}, []string{"verb"}),
	}

	c.registry.MustRegister(
		c.connectionsOpen,
		c.connectionsTotal,
		c.bytesInTotal,
		c.bytesOutTotal,
		c.commandsTotal,
	)

	return c
}

// Registry returns the private Prometheus registry backing this Collector,
// for mounting behind promhttp.HandlerFor.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) ConnectionOpened() {
	c.connectionsOpen.Inc()
	c.connectionsTotal.Inc()
}

func (c *Collector) ConnectionClosed() {
	c.connectionsOpen.Dec()
}

func (c *Collector) BytesIn(n int) {
	if n > 0 {
		c.bytesInTotal.Add(float64(n))
	}
}

func (c *Collector) BytesOut(n int) {
	if n > 0 {
		c.bytesOutTotal.Add(float64(n))
	}
}

func (c *Collector) Command(verb string) {
	c.commandsTotal.WithLabelValues(verb).Inc()
}
