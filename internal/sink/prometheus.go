package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/springlattice/internal/dynamo"
)

// Prometheus exports readings as metrics under the springlattice namespace.
type Prometheus struct {
	compression prometheus.Gauge
	liveMasses  prometheus.Gauge
	simTime     prometheus.Gauge
	steps       prometheus.Counter
	degenerate  prometheus.Counter
}

// NewPrometheus registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		compression: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "springlattice",
			Name:      "average_compression",
			Help:      "Mean spring compression ratio of the last step.",
		}),
		liveMasses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "springlattice",
			Name:      "live_masses",
			Help:      "Point masses still part of the body.",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "springlattice",
			Name:      "simulated_seconds",
			Help:      "Simulated time after the last step.",
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "springlattice",
			Name:      "steps_total",
			Help:      "Completed simulation steps.",
		}),
		degenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "springlattice",
			Name:      "degenerate_springs_total",
			Help:      "Springs whose endpoints coincided, summed over steps.",
		}),
	}

	for _, c := range []prometheus.Collector{p.compression, p.liveMasses, p.simTime, p.steps, p.degenerate} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) Publish(r dynamo.Reading) {
	p.compression.Set(r.AverageCompression)
	p.liveMasses.Set(float64(r.LiveMasses))
	p.simTime.Set(r.Time)
	p.steps.Inc()
	p.degenerate.Add(float64(r.Degenerate))
}
