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

package errors

// Package-ranged code blocks, mirroring the MinPkgXxx layout: each
// sub-concern of the tunnel server gets a hundred-wide range so future
// packages can be added without colliding.
const (
	MinPkgCodec      CodeError = 100
	MinPkgTunnel     CodeError = 200
	MinPkgDispatcher CodeError = 300
	MinPkgServer     CodeError = 400
)

const (
	// ErrorCodecDecode indicates a token failed to decode under the
	// configured codec (malformed or tampered header value).
	ErrorCodecDecode CodeError = iota + MinPkgCodec
	ErrorCodecEncode
)

const (
	// ErrorUnknownConnection indicates a connection id with no matching
	// registry entry (unknown, already reaped, or from a prior process).
	ErrorUnknownConnection CodeError = iota + MinPkgTunnel
	ErrorConnectFailed
	ErrorDeadConnection
	ErrorQueueOverflow
)

const (
	// ErrorBadCommand indicates a request carried a verb or header shape
	// the dispatcher does not recognize.
	ErrorBadCommand CodeError = iota + MinPkgDispatcher
	ErrorAuthFailed
	ErrorMissingTarget
)

const (
	ErrorBindFailure CodeError = iota + MinPkgServer
	ErrorShutdownFailure
)

func getMessage(code CodeError) string {
	switch code {
	case ErrorCodecDecode:
		return "failed to decode token"
	case ErrorCodecEncode:
		return "failed to encode token"
	case ErrorUnknownConnection:
		return "unknown connection id"
	case ErrorConnectFailed:
		return "failed to dial upstream target"
	case ErrorDeadConnection:
		return "connection is closed"
	case ErrorQueueOverflow:
		return "inbound queue exceeded its limit"
	case ErrorBadCommand:
		return "unrecognized command"
	case ErrorAuthFailed:
		return "authentication failed"
	case ErrorMissingTarget:
		return "missing target header"
	case ErrorBindFailure:
		return "failed to bind listener"
	case ErrorShutdownFailure:
		return "failed to shut down cleanly"
	default:
		return "unknown error"
	}
}
