// Package debug exposes runtime profiles and counters on a separate,
// non-public listener.
package debug

import (
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strconv"
	"sync/atomic"

	"github.com/bornholm/breathe/internal/shell"
)

type Handler struct {
	mux *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// NewHandler serves the pprof profiles, the expvar counters and the
// prometheus metrics under prefix. The count of mounted shells is published
// as "shells".
func NewHandler(prefix string, registry *shell.Registry, metrics *Metrics) *Handler {
	publishShells(registry)

	mux := &http.ServeMux{}

	mux.HandleFunc(fmt.Sprintf("%s/", prefix), pprof.Index)
	mux.HandleFunc(fmt.Sprintf("%s/cmdline", prefix), pprof.Cmdline)
	mux.HandleFunc(fmt.Sprintf("%s/profile", prefix), pprof.Profile)
	mux.HandleFunc(fmt.Sprintf("%s/symbol", prefix), pprof.Symbol)
	mux.HandleFunc(fmt.Sprintf("%s/trace", prefix), pprof.Trace)
	mux.Handle(fmt.Sprintf("%s/vars", prefix), expvar.Handler())
	mux.Handle(fmt.Sprintf("%s/metrics", prefix), metrics.Handler())

	mux.HandleFunc(fmt.Sprintf("%s/{name}", prefix), func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		pprof.Handler(name).ServeHTTP(w, r)
	})

	return &Handler{mux}
}

var shells = &shellsVar{}

type shellsVar struct {
	registry atomic.Pointer[shell.Registry]
}

// String implements expvar.Var.
func (v *shellsVar) String() string {
	registry := v.registry.Load()
	if registry == nil {
		return "0"
	}

	return strconv.Itoa(registry.Len())
}

func publishShells(registry *shell.Registry) {
	if expvar.Get("shells") == nil {
		expvar.Publish("shells", shells)
	}

	shells.registry.Store(registry)
}

var _ http.Handler = &Handler{}
