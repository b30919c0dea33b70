/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package server

import (
	"context"
	"time"

	liblog "github.com/retund/retund/logger"
	"github.com/retund/retund/tunnel"
)

// DefaultIdleCeiling is how long a connection may sit untouched before the
// janitor garbage-collects it.
const DefaultIdleCeiling = 3 * time.Minute

// RunJanitor evicts registry entries idle past ceiling on a fixed tick,
// until ctx is done. It changes nothing about the wire contract — it only
// reclaims connections no client is polling anymore.
func RunJanitor(ctx context.Context, reg tunnel.Registry, ceiling, tick time.Duration) {
	if ceiling <= 0 {
		ceiling = DefaultIdleCeiling
	}
	if tick <= 0 {
		tick = ceiling / 3
	}

	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := reg.GC(ceiling); n > 0 {
				liblog.DebugLevel.Logf("janitor evicted %d idle connection(s)", n)
			}
		}
	}
}
