// Package metrics exposes prometheus instrumentation for the scoring node
// and a standalone metrics HTTP server.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves the prometheus registry on its own listener, separate
// from the API server.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server
}

// New creates a metrics server for the given namespace. The listener is not
// opened until ListenAndServe; an empty listenAddr yields a server whose
// registry can still be used for registration.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		registry: registry,
		srv: &http.Server{
			Addr:    listenAddr,
			Handler: mux,
		},
	}, nil
}

// Registry returns the server's prometheus registry.
func (s *MetricsServer) Registry() *prometheus.Registry {
	return s.registry
}

// ListenAndServe starts serving /metrics.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// NodeMetrics counts protocol operations handled by the node.
type NodeMetrics struct {
	PostsSubmitted  prometheus.Counter
	ScoreRequests   prometheus.Counter
	ScoresRevealed  prometheus.Counter
	RejectedOps     *prometheus.CounterVec
}

// NewNodeMetrics registers the node counters with the given registerer.
func NewNodeMetrics(namespace string, reg prometheus.Registerer) *NodeMetrics {
	m := &NodeMetrics{
		PostsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_submitted_total",
			Help:      "Encrypted posts accepted by the ledger.",
		}),
		ScoreRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_requests_total",
			Help:      "Decryption requests issued to the oracle.",
		}),
		ScoresRevealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_revealed_total",
			Help:      "Decryption requests finalized with a cleartext score.",
		}),
		RejectedOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_operations_total",
			Help:      "Operations rejected by the ledger, by operation and reason.",
		}, []string{"operation", "reason"}),
	}

	reg.MustRegister(m.PostsSubmitted, m.ScoreRequests, m.ScoresRevealed, m.RejectedOps)
	return m
}
