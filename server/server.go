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

// Package server is the HTTP front end (component F): it owns the listener
// lifecycle and hands every request to the dispatcher. Nothing here knows
// about the tunnel protocol.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/net/http2"

	liberr "github.com/retund/retund/errors"
	liblog "github.com/retund/retund/logger"
)

const (
	timeoutShutdown = 10 * time.Second
)

// Server is the HTTP front end's lifecycle contract.
type Server interface {
	IsRunning() bool
	Listen(handler http.Handler) liberr.Error
	WaitNotify()
	Restart(handler http.Handler) liberr.Error
	Shutdown()
}

type server struct {
	run atomic.Bool
	cfg Config
	srv *http.Server
	cnl context.CancelFunc
}

// Config configures the listener and its HTTP/1.1+HTTP2 server tuning.
type Config struct {
	Name    string
	Listen  string // host:port to bind, e.g. "0.0.0.0:8080"
	Context context.Context

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	MaxHandlers          int
	MaxConcurrentStreams uint32
}

func (c Config) getContext() context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

// New returns a Server bound to cfg. Listen must be called to actually bind.
func New(cfg Config) Server {
	return &server{cfg: cfg}
}

func (s *server) GetName() string {
	if s.cfg.Name == "" {
		return s.cfg.Listen
	}
	return s.cfg.Name
}

func (s *server) IsRunning() bool {
	return s.run.Load()
}

func (s *server) Listen(handler http.Handler) liberr.Error {
	srv := &http.Server{
		Addr:     s.cfg.Listen,
		Handler:  handler,
		ErrorLog: liblog.GetLogger(liblog.ErrorLevel, log.LstdFlags|log.Lmicroseconds, "[tunnel server '%s']", s.GetName()),
	}

	if s.cfg.ReadTimeout > 0 {
		srv.ReadTimeout = s.cfg.ReadTimeout
	}
	if s.cfg.ReadHeaderTimeout > 0 {
		srv.ReadHeaderTimeout = s.cfg.ReadHeaderTimeout
	}
	if s.cfg.WriteTimeout > 0 {
		srv.WriteTimeout = s.cfg.WriteTimeout
	}
	if s.cfg.MaxHeaderBytes > 0 {
		srv.MaxHeaderBytes = s.cfg.MaxHeaderBytes
	}
	if s.cfg.IdleTimeout > 0 {
		srv.IdleTimeout = s.cfg.IdleTimeout
	}

	h2 := &http2.Server{}
	if s.cfg.MaxHandlers > 0 {
		h2.MaxHandlers = s.cfg.MaxHandlers
	}
	if s.cfg.MaxConcurrentStreams > 0 {
		h2.MaxConcurrentStreams = s.cfg.MaxConcurrentStreams
	}
	if s.cfg.IdleTimeout > 0 {
		h2.IdleTimeout = s.cfg.IdleTimeout
	}

	if e := http2.ConfigureServer(srv, h2); e != nil {
		return liberr.Make(liberr.ErrorBindFailure, e)
	}

	if s.IsRunning() {
		s.Shutdown()
	}

	// Bind synchronously so a port already in use surfaces to the caller
	// instead of being swallowed by the serve goroutine.
	lis, e := net.Listen("tcp", s.cfg.Listen)
	if e != nil {
		return liberr.Make(liberr.ErrorBindFailure, e)
	}

	s.srv = srv

	ctx, cnl := context.WithCancel(s.cfg.getContext())
	s.cnl = cnl
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		defer func() {
			cnl()
			s.run.Store(false)
		}()

		liblog.InfoLevel.Logf("server %q starting on %s", s.GetName(), s.cfg.Listen)
		s.run.Store(true)

		err := s.srv.Serve(lis)
		if err != nil && errors.Is(err, http.ErrServerClosed) {
			return
		}
		if err != nil {
			liblog.ErrorLevel.LogErrorCtxf(liblog.NilLevel, "server %q listen error", err, s.GetName())
		}
	}()

	return nil
}

// Restart tears down any running listener and starts a fresh one with the
// same (or a replacement) handler.
func (s *server) Restart(handler http.Handler) liberr.Error {
	s.Shutdown()
	return s.Listen(handler)
}

// WaitNotify blocks until SIGINT/SIGTERM/SIGQUIT or the configured context
// is done, then shuts down gracefully.
func (s *server) WaitNotify() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		s.Shutdown()
	case <-s.cfg.getContext().Done():
		s.Shutdown()
	}
}

func (s *server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutShutdown)
	defer func() {
		cancel()
		if s.srv != nil {
			_ = s.srv.Close()
		}
		s.run.Store(false)
	}()

	liblog.InfoLevel.Logf("server %q shutting down", s.GetName())

	if s.cnl != nil {
		s.cnl()
	}

	if s.srv != nil {
		if err := s.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			liblog.ErrorLevel.Logf("server %q shutdown error: %v", s.GetName(), err)
		}
	}
}
