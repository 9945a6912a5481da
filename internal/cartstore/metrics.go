package cartstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the silent corrections and server pushes the store makes.
// All methods tolerate a nil receiver so tests can skip registration.
type Metrics struct {
	PeriodCorrections prometheus.Counter
	ServerSaves       prometheus.Counter
	ServerSaveErrors  prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		PeriodCorrections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_cart_period_corrections_total",
			Help: "Registration periods silently raised to the TLD minimum",
		}),
		ServerSaves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_cart_server_saves_total",
			Help: "Successful whole-cart pushes to the Cart API",
		}),
		ServerSaveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "domcart_cart_server_save_errors_total",
			Help: "Failed whole-cart pushes to the Cart API",
		}),
	}
}

func (m *Metrics) RecordCorrection() {
	if m == nil {
		return
	}
	m.PeriodCorrections.Inc()
}

func (m *Metrics) RecordSave() {
	if m == nil {
		return
	}
	m.ServerSaves.Inc()
}

func (m *Metrics) RecordSaveFailure() {
	if m == nil {
		return
	}
	m.ServerSaveErrors.Inc()
}
