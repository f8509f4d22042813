// Package metrics defines and registers all custom Prometheus metrics for the
// Roots admin console. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package load. The
// Hooks builders adapt them to the instrumentation hooks exposed by the
// query cache, the mutation runner and the remote client.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roots/admin-console/internal/core/mutation"
	"github.com/roots/admin-console/internal/core/query"
	"github.com/roots/admin-console/internal/infrastructure/remote"
)

const namespace = "console"

// ── Query cache metrics ───────────────────────────────────────────────────────

// QueryFetchesTotal counts network fetches issued by the query cache.
// Labels:
//   - resource: the resource name of the key (e.g. "getAllUsers")
//   - result: "success" or "error"
var QueryFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_fetches_total",
		Help:      "Total number of remote fetches issued by the query cache.",
	},
	[]string{"resource", "result"},
)

// QueryFetchDuration measures how long one fetch takes, retries included.
var QueryFetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_fetch_duration_seconds",
		Help:      "Duration of query cache fetches.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)

// QueryJoinedTotal counts reads that joined an in-flight fetch instead of
// issuing their own.
var QueryJoinedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_joined_total",
		Help:      "Total number of reads de-duplicated onto an in-flight fetch.",
	},
	[]string{"resource"},
)

// QueryHitsTotal counts reads served from a settled entry.
var QueryHitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_hits_total",
		Help:      "Total number of reads served from the cache.",
	},
	[]string{"resource"},
)

// QueryInvalidationsTotal counts entries marked stale.
var QueryInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_invalidations_total",
		Help:      "Total number of cache entries invalidated.",
	},
	[]string{"resource"},
)

// ── Mutation metrics ──────────────────────────────────────────────────────────

// MutationsTotal counts settled mutations.
// Labels:
//   - name: the mutation name (e.g. "reviewPaymentRequest")
//   - result: "success" or "error"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of settled mutations.",
	},
	[]string{"name", "result"},
)

var MutationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mutation_duration_seconds",
		Help:      "Duration of mutations from invocation to settlement.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"name"},
)

// ── Remote API metrics ────────────────────────────────────────────────────────

// RemoteRequestsTotal counts calls to the remote API.
// Labels:
//   - endpoint: normalized path (ids replaced by ":id")
//   - status: HTTP status code, or "0" when no response arrived
var RemoteRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Total number of remote API calls, by endpoint and status.",
	},
	[]string{"endpoint", "status"},
)

var RemoteRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of remote API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// RemoteBreakerState reports the circuit breaker state: 0 closed, 1 half-open, 2 open.
var RemoteBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "remote_breaker_state",
		Help:      "Circuit breaker state of the remote API transport.",
	},
	[]string{"name"},
)

// ── Console metrics ───────────────────────────────────────────────────────────

// RegisterWorkspaceGauge exposes the number of live console workspaces as
// reported by count. Call it once at startup.
func RegisterWorkspaceGauge(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspaces_active",
			Help:      "Current number of live console workspaces.",
		},
		func() float64 { return float64(count()) },
	)
}

// ActivityDroppedTotal counts audit entries dropped because the queue was full.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of audit entries dropped on a saturated queue.",
	},
)

// QueryHooks reports query cache events to the query metrics.
func QueryHooks() query.Hooks {
	return query.Hooks{
		Fetched: func(resource string, elapsed time.Duration, err error) {
			QueryFetchesTotal.WithLabelValues(resource, result(err)).Inc()
			QueryFetchDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
		},
		Joined: func(resource string) {
			QueryJoinedTotal.WithLabelValues(resource).Inc()
		},
		Hit: func(resource string) {
			QueryHitsTotal.WithLabelValues(resource).Inc()
		},
		Invalidated: func(resource string) {
			QueryInvalidationsTotal.WithLabelValues(resource).Inc()
		},
	}
}

// MutationHooks reports mutation settlements to the mutation metrics.
func MutationHooks() mutation.Hooks {
	return mutation.Hooks{
		Settled: func(name string, elapsed time.Duration, err error) {
			MutationsTotal.WithLabelValues(name, result(err)).Inc()
			MutationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		},
	}
}

// RemoteHooks reports remote calls and breaker transitions.
func RemoteHooks() remote.Hooks {
	return remote.Hooks{
		Request: func(endpoint string, status int, elapsed time.Duration) {
			RemoteRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
			RemoteRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
		},
		BreakerState: func(name string, value float64) {
			RemoteBreakerState.WithLabelValues(name).Set(value)
		},
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
