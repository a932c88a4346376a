package telemetry

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsAreIsolated(t *testing.T) {
	m1 := NewMetrics()
	m2 := NewMetrics()

	m1.ObserveGossip(3)
	m1.ObserveGossip(0)

	if got := testutil.ToFloat64(m1.GossipSent); got != 2 {
		t.Fatalf("gossip_sent should be 2, not %v", got)
	}
	if got := testutil.ToFloat64(m1.GossipValuesSent); got != 3 {
		t.Fatalf("gossip_values_sent should be 3, not %v", got)
	}
	if got := testutil.ToFloat64(m2.GossipSent); got != 0 {
		t.Fatalf("a second registry should not see the first one's counts, got %v", got)
	}
}

func TestObserveHandle(t *testing.T) {
	m := NewMetrics()

	m.ObserveHandle("broadcast", time.Now())
	m.ObserveHandle("broadcast", time.Now())
	m.ObserveHandle("read", time.Now())
	m.Drop(DropUnknownPeer)

	if got := testutil.ToFloat64(m.Received.WithLabelValues("broadcast")); got != 2 {
		t.Fatalf("broadcast count should be 2, not %v", got)
	}
	if got := testutil.ToFloat64(m.Dropped.WithLabelValues(DropUnknownPeer)); got != 1 {
		t.Fatalf("unknown_peer drops should be 1, not %v", got)
	}
	if got := testutil.CollectAndCount(m.HandleDuration); got != 2 {
		t.Fatalf("there should be 2 latency series, not %d", got)
	}
}

func TestHandlerAndInstrument(t *testing.T) {
	m := NewMetrics()
	m.SetBuildInfo("1.0.0", "abcdef")

	h := m.Instrument("teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/teapot", nil))

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("teapot", "4xx")); got != 1 {
		t.Fatalf("4xx count should be 1, not %v", got)
	}

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []string{
		`rumor_build_info{git_sha="abcdef",version="1.0.0"} 1`,
		"rumor_uptime_seconds",
		`rumor_http_requests_total{op="teapot",status="4xx"} 1`,
	} {
		if !strings.Contains(string(body), s) {
			t.Fatalf("metrics output should contain %q:\n%s", s, body)
		}
	}
}
