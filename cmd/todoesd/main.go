// The todoesd program serves an in-memory todoes backend, for trying out the todoes client and its acme user
// interface. Data is lost on exit. Prometheus metrics, per route and status, are served at /metrics.
//
// Settings come from the environment or a .env file: TODOESD_ADDR (default :8080), TODOESD_PREFIX (default /api),
// LOG_LEVEL (default info).
package main // import "github.com/nicolagi/todoes/cmd/todoesd"

import (
	"net/http"

	"github.com/nicolagi/todoes"
	"github.com/nicolagi/todoes/internal/config"
	"github.com/nicolagi/todoes/internal/memapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithField("cause", err).Fatal("Could not load configuration")
	}
	log.SetLevel(cfg.LogLevel)

	store := memapi.NewStore(
		&todoes.Todo{ID: 1, Name: "buy milk"},
		&todoes.Todo{ID: 2, Name: "buy eggs"},
	)
	r := memapi.NewRouter(cfg.Prefix, store)
	r.Handle("/metrics", promhttp.Handler())

	logEntry := log.WithField("addr", cfg.Addr)
	logEntry.WithField("prefix", cfg.Prefix).Info("Serving todoes")
	handler := memapi.Logging(log.WithField("component", "memapi"))(memapi.Metrics(prometheus.DefaultRegisterer)(r))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logEntry.WithField("cause", err).Fatal("Server failed")
	}
}
