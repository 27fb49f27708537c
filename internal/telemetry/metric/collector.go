package metric

import "github.com/prometheus/client_golang/prometheus"

// Collector exports static build information as a constant gauge.
type Collector struct {
	desc    *prometheus.Desc
	version string
	commit  string
}

// NewCollector creates a build information collector.
func NewCollector(version, commit string) *Collector {
	return &Collector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information of the running server.",
			[]string{"version", "commit"},
			nil,
		),
		version: version,
		commit:  commit,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1, c.version, c.commit)
}
