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

// Package errors provides a small numeric error-code system: every error
// that crosses a package boundary in this module carries a CodeError in
// addition to its message, and can wrap a parent error for chaining.
package errors

import (
	"fmt"
)

// CodeError is a numeric error classification, package-ranged the way
// MinPkgXxx constants are in code.go.
type CodeError uint16

// Error is the interface returned by this package's constructors.
type Error interface {
	error

	// Code returns the CodeError this error carries.
	Code() CodeError

	// IsCode reports whether this error (or any ancestor) carries code.
	IsCode(code CodeError) bool

	// Add attaches one or more parent errors to this error's chain.
	Add(err ...error) Error

	// GetParent returns the errors attached via Add, in attachment order.
	GetParent() []error
}

type ers struct {
	code   CodeError
	msg    string
	parent []error
}

func (e *ers) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("error code %d", e.code)
	}
	return e.msg
}

func (e *ers) Code() CodeError { return e.code }

func (e *ers) IsCode(code CodeError) bool {
	if e.code == code {
		return true
	}
	for _, p := range e.parent {
		if ce, ok := p.(Error); ok && ce.IsCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) Add(err ...error) Error {
	for _, p := range err {
		if p != nil {
			e.parent = append(e.parent, p)
		}
	}
	return e
}

func (e *ers) GetParent() []error { return e.parent }

func (e *ers) Unwrap() error {
	if len(e.parent) == 0 {
		return nil
	}
	return e.parent[0]
}

// New builds an Error from code with the code's registered message.
func New(code CodeError) Error {
	return &ers{code: code, msg: getMessage(code)}
}

// Newf builds an Error from code with a formatted message.
func Newf(code CodeError, pattern string, args ...interface{}) Error {
	return &ers{code: code, msg: fmt.Sprintf(pattern, args...)}
}

// Make builds an Error from code wrapping err as its parent, keeping the
// code's registered message.
func Make(code CodeError, err error) Error {
	e := &ers{code: code, msg: getMessage(code)}
	return e.Add(err)
}

// Is reports whether err is an Error carrying code (including ancestors).
func Is(err error, code CodeError) bool {
	if e, ok := err.(Error); ok {
		return e.IsCode(code)
	}
	return false
}

// Has reports whether err is a non-nil Error of any code.
func Has(err error) bool {
	_, ok := err.(Error)
	return ok
}
