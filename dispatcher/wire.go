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

// Package dispatcher implements the command dispatcher (component E): it
// authenticates, decodes the command+target headers, routes to the five
// verbs, and composes the uniform 200-status responses the wire protocol
// requires.
package dispatcher

// Fixed on-wire header/cookie names. The client and server must agree on
// these; nothing about their values is meaningful beyond what the codec
// produces.
const (
	HeaderCookie = "Cookie"
	CookieName   = "sid"
	HeaderCmd    = "X-CMD"
	HeaderTarget = "X-TARGET"
	HeaderStatus = "X-STATUS"
)

// Verbs.
const (
	VerbConnect    = "CONNECT"
	VerbDisconnect = "DISCONNECT"
	VerbRead       = "READ"
	VerbForward    = "FORWARD"
	VerbPoll       = "POLL"
)

// Status sentinels carried (codec-encoded) in HeaderStatus.
const (
	StatusOK     = "OK"
	StatusFail   = "FAIL"
	StatusClosed = "CLOSED"
)

// DecoyBody is the fixed, innocuous response body used on every response
// whose outcome is signaled purely through headers.
const DecoyBody = `<!DOCTYPE html><html><head><title>Welcome</title></head><body><h1>It works!</h1></body></html>`

// DefaultReadCap is the default maximum number of bytes a single READ
// drains from a connection's inbound queue.
const DefaultReadCap = 512 * 1024
