package server

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// selfMetrics instruments the exporter itself. They live in a private
// registry so the deterministic core document is never mixed with
// registry-ordered output; the rendered registry is appended after it.
type selfMetrics struct {
	registry       *prometheus.Registry
	scrapes        prometheus.Counter
	scrapeErrors   prometheus.Counter
	scrapeDuration prometheus.Histogram
}

func newSelfMetrics(version string) *selfMetrics {
	m := &selfMetrics{
		registry: prometheus.NewRegistry(),
		scrapes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wireguard_exporter_scrapes_total",
			Help: "Total number of scrapes served",
		}),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wireguard_exporter_scrape_errors_total",
			Help: "Total number of scrapes that failed",
		}),
		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wireguard_exporter_scrape_duration_seconds",
			Help:    "Time spent collecting and rendering one scrape",
			Buckets: prometheus.DefBuckets,
		}),
	}

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wireguard_exporter_build_info",
		Help: "Build information of the running exporter",
	}, []string{"version"})
	buildInfo.WithLabelValues(version).Set(1)

	m.registry.MustRegister(m.scrapes, m.scrapeErrors, m.scrapeDuration, buildInfo)
	return m
}

// render encodes the private registry in text exposition format.
func (m *selfMetrics) render() (string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
