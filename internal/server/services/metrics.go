package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes used as the "result" label.
const (
	loginOK          = "ok"
	loginInvalid     = "invalid_credentials"
	loginDisabled    = "disabled"
	loginRateLimited = "rate_limited"
	loginError       = "error"
)

// Metrics counts account events. A nil *Metrics records nothing.
type Metrics struct {
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
}

// NewMetrics registers the account counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "visitorhub_registrations_total",
			Help: "Total number of visitor accounts registered",
		}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visitorhub_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) registered() {
	if m != nil {
		m.registrations.Inc()
	}
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}
