package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mooderia_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StateMutations counts applied state mutations by operation.
	StateMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mooderia_state_mutations_total",
		Help: "Total number of applied state mutations",
	}, []string{"operation"})

	// PersistenceFailures counts failed record writes by record key.
	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mooderia_persistence_failures_total",
		Help: "Total number of failed record writes",
	}, []string{"record"})

	// SyntheticInteractions counts simulated citizen reactions by kind.
	SyntheticInteractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mooderia_synthetic_interactions_total",
		Help: "Total number of simulated citizen interactions",
	}, []string{"kind", "outcome"})

	// PersonaRequests counts text-generation round trips by persona and outcome.
	PersonaRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mooderia_persona_requests_total",
		Help: "Total number of persona requests",
	}, []string{"persona", "outcome"})

	// PersonaLatency records text-generation latency by persona.
	PersonaLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mooderia_persona_latency_seconds",
		Help:    "Persona round trip latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"persona"})
)
