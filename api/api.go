// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/lodepool/lodepool/api/admin"
	"github.com/lodepool/lodepool/api/events"
	"github.com/lodepool/lodepool/api/pool"
	"github.com/lodepool/lodepool/api/stakes"
	"github.com/lodepool/lodepool/api/subscriptions"
	"github.com/lodepool/lodepool/eventdb"
	"github.com/lodepool/lodepool/log"
	"github.com/lodepool/lodepool/staking"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
	LogsLimit       uint64
	// Depositor enables the solo-mode deposit endpoint; nil disables it.
	Depositor stakes.Depositor
}

// New returns the http handler of the staking service and a close function
// that disconnects active subscriptions. subs must be the instance wired into
// the engine as its event sink; pass nil to serve without subscriptions.
func New(
	staker *staking.Staker,
	eventDB *eventdb.EventDB,
	subs *subscriptions.Subscriptions,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	stakes.New(staker, opts.Depositor, opts.LogsLimit).
		Mount(router, "/stakes")
	pool.New(staker).
		Mount(router, "/pool")
	admin.New(staker).
		Mount(router, "/admin")
	if eventDB != nil {
		events.New(eventDB, opts.LogsLimit).
			Mount(router, "/events")
	}
	closeSubs := func() {}
	if subs != nil {
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, closeSubs // subscriptions handles hijacked conns, which need to be closed
}
