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
	"errors"
	"net"
	"time"

	liblog "github.com/retund/retund/logger"
)

// PumpConfig tunes the outbound read pump. Zero values fall back to the
// package defaults in DefaultPumpConfig.
type PumpConfig struct {
	// ScratchSize bounds each individual socket Read.
	ScratchSize int
	// SoftDeadline is re-armed before every Read purely so a blocked read
	// notices Close() promptly; a deadline expiry is not an error.
	SoftDeadline time.Duration
	// HighWater pauses the pump (stops issuing Reads) once the record's
	// undrained inbound size reaches this many bytes.
	HighWater int
	// LowWater resumes the pump once drains bring the inbound size back
	// at or below this many bytes.
	LowWater int
	// PausePoll is how often a paused pump rechecks the queue size.
	PausePoll time.Duration
}

// DefaultPumpConfig returns the pump's default tuning: a 32 KiB scratch
// buffer, a 2s soft read deadline, and the backpressure water marks.
func DefaultPumpConfig() PumpConfig {
	return PumpConfig{
		ScratchSize:  32 * 1024,
		SoftDeadline: 2 * time.Second,
		HighWater:    2 * 1024 * 1024,
		LowWater:     512 * 1024,
		PausePoll:    50 * time.Millisecond,
	}
}

// RunPump drains socket into rec's inbound queue until EOF, a read error,
// or rec.Close(). It never touches the registry, only its owning record.
// Intended to be run as `go RunPump(...)`.
func RunPump(rec Connection, cfg PumpConfig) {
	if cfg.ScratchSize <= 0 {
		d := DefaultPumpConfig()
		cfg.ScratchSize = d.ScratchSize
	}
	if cfg.SoftDeadline <= 0 {
		cfg.SoftDeadline = DefaultPumpConfig().SoftDeadline
	}
	if cfg.HighWater <= 0 {
		cfg.HighWater = DefaultPumpConfig().HighWater
	}
	if cfg.LowWater <= 0 {
		cfg.LowWater = DefaultPumpConfig().LowWater
	}
	if cfg.PausePoll <= 0 {
		cfg.PausePoll = DefaultPumpConfig().PausePoll
	}

	buf := make([]byte, cfg.ScratchSize)

	socket := rec.Socket()

	for {
		if rec.Closed() {
			return
		}

		// once the queue crosses high-water, stay paused until drains
		// bring it back down to low-water
		if rec.InboundSize() >= cfg.HighWater {
			for rec.InboundSize() > cfg.LowWater {
				if rec.Closed() {
					return
				}
				time.Sleep(cfg.PausePoll)
			}
		}

		_ = socket.SetReadDeadline(time.Now().Add(cfg.SoftDeadline))

		n, err := socket.Read(buf)
		if n > 0 {
			rec.AppendInbound(buf[:n])
		}

		if err == nil {
			continue
		}

		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			// soft deadline expiry: not an error, just loop to observe Close()
			continue
		}

		rec.MarkPeerClosed()
		liblog.DebugLevel.Logf("read pump for connection %q ending: %v", rec.ID(), err)
		return
	}
}
