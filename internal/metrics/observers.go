package metrics

import (
	"github.com/rxtech-lab/ignitus-mcp/internal/notify"
	"github.com/rxtech-lab/ignitus-mcp/internal/session"
)

var sessionStates = []session.State{
	session.Disconnected,
	session.Connecting,
	session.ConnectedWrongChain,
	session.ConnectedReady,
}

// ObserveTransition records a session transition and moves the state gauge.
func ObserveTransition(from, to session.State) {
	SessionTransitions.WithLabelValues(from.String(), to.String()).Inc()
	for _, s := range sessionStates {
		v := 0.0
		if s == to {
			v = 1
		}
		SessionState.WithLabelValues(s.String()).Set(v)
	}
}

func ObserveStale() {
	StaleAttempts.Inc()
}

func ObserveWalletRequest(method string, err error) {
	WalletRequests.WithLabelValues(method, Result(err)).Inc()
}

func ObserveSubmission(method string, err error) {
	ContractSubmissions.WithLabelValues(method, Result(err)).Inc()
}

func ObserveNotification(level notify.Level) {
	Notifications.WithLabelValues(string(level)).Inc()
}
