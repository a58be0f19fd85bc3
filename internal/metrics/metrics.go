package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionTransitions tracks wallet session state transitions
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitus_session_transitions_total",
			Help: "Total number of wallet session state transitions",
		},
		[]string{"from", "to"},
	)

	// SessionState is 1 for the current session state and 0 for every other state
	SessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ignitus_session_state",
			Help: "Current wallet session state",
		},
		[]string{"state"},
	)

	// StaleAttempts tracks session attempts discarded because a newer one superseded them
	StaleAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ignitus_session_stale_attempts_total",
			Help: "Total number of superseded session attempts",
		},
	)

	// WalletRequests tracks EIP-1193 requests sent to the wallet
	WalletRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitus_wallet_requests_total",
			Help: "Total number of wallet provider requests",
		},
		[]string{"method", "result"},
	)

	// ContractSubmissions tracks contract transactions submitted through a binding
	ContractSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitus_contract_submissions_total",
			Help: "Total number of contract transaction submissions",
		},
		[]string{"method", "result"},
	)

	// Notifications tracks user notifications by level
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ignitus_notifications_total",
			Help: "Total number of user notifications",
		},
		[]string{"level"},
	)
)

// Result labels an outcome as "ok" or "error".
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
