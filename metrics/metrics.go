package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the petcoin collectors.
	Registry = prometheus.NewRegistry()

	// RPCRequests counts node json-rpc requests by method and result.
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petcoin",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of klaytn node rpc requests.",
		},
		[]string{"method", "status"},
	)

	// WalletRequests counts KAS wallet api requests by endpoint and result.
	WalletRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petcoin",
			Subsystem: "kas",
			Name:      "requests_total",
			Help:      "Total number of KAS wallet api requests.",
		},
		[]string{"endpoint", "status"},
	)

	// Transactions counts submitted contract transactions.
	Transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petcoin",
			Subsystem: "token",
			Name:      "transactions_total",
			Help:      "Total number of submitted token contract transactions.",
		},
		[]string{"method", "status"},
	)

	// LockUpReleases counts releases triggered by the watcher.
	LockUpReleases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "petcoin",
			Subsystem: "watcher",
			Name:      "releases_total",
			Help:      "Total number of lock-up releases triggered by the watcher.",
		},
		[]string{"status"},
	)
)

func init() {
	Registry.MustRegister(RPCRequests, WalletRequests, Transactions, LockUpReleases)
}

// Status returns the label value of err.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve blocks serving /metrics on addr.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
