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

// Command retund runs the tunnel server: it binds an HTTP listener and
// multiplexes outbound TCP connections through it on behalf of a reGeorg-
// style client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/retund/retund/codec"
	"github.com/retund/retund/dispatcher"
	liblog "github.com/retund/retund/logger"
	"github.com/retund/retund/metrics"
	"github.com/retund/retund/server"
	"github.com/retund/retund/tunnel"
)

func main() {
	os.Exit(run())
}

// requireSessionCookie gates /metrics behind the same shared secret the
// tunnel protocol's auth cookie uses, so scraping cannot bypass the
// session key check.
func requireSessionCookie(cdc codec.Codec, sessionKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Cookie(dispatcher.CookieName)
		if err != nil {
			c.AbortWithStatus(404)
			return
		}
		decoded, err := cdc.Decode(ck)
		if err != nil || decoded != sessionKey {
			c.AbortWithStatus(404)
			return
		}
		c.Next()
	}
}

func run() int {
	var (
		listen     string
		port       string
		sessionKey string
		logLevel   string
	)

	pflag.StringVarP(&listen, "listen", "l", "0.0.0.0", "host to bind the HTTP listener")
	pflag.StringVar(&sessionKey, "session-key", os.Getenv("RETUND_SESSION_KEY"), "shared secret the auth cookie must decode to")
	pflag.StringVar(&logLevel, "log-level", "info", "panic|fatal|error|warn|info|debug")
	pflag.Parse()

	if args := pflag.Args(); len(args) > 0 {
		port = args[0]
	} else {
		fmt.Fprintln(os.Stderr, "retund: missing required port argument")
		return 2
	}

	liblog.Default().SetLevel(liblog.ParseLevel(logLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	reg := tunnel.New()
	cdc := codec.NewROT(sessionKey)
	met := metrics.New()

	disp := dispatcher.New(dispatcher.Config{
		SessionKey: sessionKey,
		Codec:      cdc,
		Registry:   reg,
		Metrics:    met,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/metrics", requireSessionCookie(cdc, sessionKey), gin.WrapH(promhttp.HandlerFor(met.Registry(), promhttp.HandlerOpts{})))
	// every other path and method goes to the dispatcher; a root catch-all
	// route would collide with /metrics in gin's tree
	router.NoRoute(disp.Handler())

	srv := server.New(server.Config{
		Name:    "retund",
		Listen:  fmt.Sprintf("%s:%s", listen, port),
		Context: ctx,
	})

	go server.RunJanitor(ctx, reg, server.DefaultIdleCeiling, 0)

	if err := srv.Listen(router); err != nil {
		liblog.ErrorLevel.Logf("bind failure: %v", err)
		return 1
	}

	srv.WaitNotify()
	return 0
}
