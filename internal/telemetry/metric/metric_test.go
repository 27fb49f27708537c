package metric

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector("v1.2.3", "abc123")
	if c == nil {
		t.Fatal("NewCollector() returned nil")
	}
}

func TestCollector_Describe(t *testing.T) {
	c := NewCollector("v1.2.3", "abc123")
	ch := make(chan *prometheus.Desc, 1)
	c.Describe(ch)
	close(ch)

	desc := <-ch
	if desc == nil || !strings.Contains(desc.String(), "reactorkv_build_info") {
		t.Errorf("Describe() = %v, want reactorkv_build_info", desc)
	}
}

func TestCollector_Collect(t *testing.T) {
	c := NewCollector("v1.2.3", "abc123")
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)

	count := 0
	for range ch {
		count++
	}
	if count != 1 {
		t.Errorf("Collect() emitted %d metrics, want 1", count)
	}
}

func TestCollector_Registered(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewCollector("v1.2.3", "abc123"))

	bodyStr := scrape(t, r)
	want := `reactorkv_build_info{commit="abc123",version="v1.2.3"} 1`
	if !strings.Contains(bodyStr, want) {
		t.Errorf("expected %s", want)
	}
}
