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

package codec

import (
	"encoding/base64"
)

// rot is the reference codec: each input byte is XORed with the repeating
// key, and the result is rendered through a URL-safe base64 alphabet so the result is a
// plain ASCII token fit for a header or cookie value.
type rot struct {
	key []byte
}

// NewROT returns a Codec keyed by key. An empty key degenerates to a plain
// base64 encode/decode — still symmetric, just without obfuscation.
func NewROT(key string) Codec {
	return &rot{key: []byte(key)}
}

func (c *rot) rotate(p []byte) []byte {
	if len(c.key) == 0 {
		return p
	}
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return out
}

func (c *rot) Encode(s string) string {
	return base64.RawURLEncoding.EncodeToString(c.rotate([]byte(s)))
}

func (c *rot) Decode(s string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(c.rotate(raw)), nil
}
