package raknet

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and gauges the connection manager and
// reliability layer update as they run. Construct one with NewMetrics and
// register it against whatever prometheus.Registerer the embedding
// application exposes.
type Metrics struct {
	DatagramsSent       prometheus.Counter
	DatagramsReceived   prometheus.Counter
	AcksSent            prometheus.Counter
	NacksSent           prometheus.Counter
	Retransmissions     prometheus.Counter
	DuplicatesDropped   prometheus.Counter
	ActiveConnections   prometheus.Gauge
}

// NewMetrics builds a Metrics bundle under the given namespace, ready to
// register.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DatagramsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "datagrams_sent_total", Help: "Datagrams sent across all connections.",
		}),
		DatagramsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "datagrams_received_total", Help: "Datagrams received across all connections.",
		}),
		AcksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "acks_sent_total", Help: "ACK datagrams sent.",
		}),
		NacksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "nacks_sent_total", Help: "NACK datagrams sent.",
		}),
		Retransmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "retransmissions_total", Help: "Packets resent after timeout or NACK.",
		}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "duplicate_messages_dropped_total", Help: "Reliable messages dropped by the duplicate filter.",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_connections", Help: "Connections currently tracked by the manager.",
		}),
	}
}

// Register adds every metric in m to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.DatagramsSent, m.DatagramsReceived, m.AcksSent, m.NacksSent,
		m.Retransmissions, m.DuplicatesDropped, m.ActiveConnections,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
