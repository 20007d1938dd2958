package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GatewayErrors counts failed calls to external collaborators, labeled by
// gateway ("documents", "files", "session") and operation.
var GatewayErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "newsdesk_gateway_errors_total",
	Help: "Total number of failed external gateway calls.",
}, []string{"gateway", "operation"})

// StoreMutations counts post store mutations, labeled by operation and outcome
// ("applied" or "rejected").
var StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "newsdesk_store_mutations_total",
	Help: "Total number of post store mutations by outcome.",
}, []string{"operation", "outcome"})
