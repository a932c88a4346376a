package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/rumor/src/common"
	"github.com/mosaicnetworks/rumor/src/net"
	"github.com/mosaicnetworks/rumor/src/node"
	"github.com/mosaicnetworks/rumor/src/proto"
	"github.com/mosaicnetworks/rumor/src/store"
)

func newTestService(t *testing.T) (*Service, *node.Node, *net.InmemTransport) {
	_, client := net.NewInmemTransport("c1")
	_, trans := net.NewInmemTransport("n1")
	net.ConnectAll(client, trans)

	n := node.NewNode(node.TestConfig(t), store.NewInmemStore(), trans, nil)
	n.RunAsync()

	s := NewService("", n, common.NewTestEntry(t, common.TestLogLevel))

	return s, n, client
}

func ask(t *testing.T, client *net.InmemTransport, to string, p proto.Payload) {
	t.Helper()

	if err := client.Send(to, p); err != nil {
		t.Fatalf("err: %v", err)
	}
	select {
	case <-client.Consumer():
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %s", p.Type())
	}
}

func get(t *testing.T, s *Service, path string, v interface{}) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	if v != nil {
		if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
	}
	return rec
}

func TestService_Routes(t *testing.T) {
	s, n, client := newTestService(t)
	defer client.Close()
	defer n.Shutdown()

	ask(t, client, "n1", proto.Topology{Topology: map[string][]string{"n1": {"n2"}}})
	ask(t, client, "n1", proto.Broadcast{Message: 7})
	ask(t, client, "n1", proto.Broadcast{Message: 3})

	var messages []uint32
	rec := get(t, s, "/messages", &messages)
	if rec.Code != http.StatusOK {
		t.Fatalf("status should be 200, not %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("CORS header should be set")
	}
	if !reflect.DeepEqual(messages, []uint32{3, 7}) {
		t.Fatalf("messages should be [3 7], not %v", messages)
	}

	var neighbors map[string][]uint32
	get(t, s, "/neighbors", &neighbors)
	if _, ok := neighbors["n2"]; !ok || len(neighbors) != 1 {
		t.Fatalf("neighbors should only contain n2: %v", neighbors)
	}

	var stats map[string]string
	get(t, s, "/stats", &stats)
	if stats["id"] != "n1" || stats["values"] != "2" || stats["num_neighbors"] != "1" {
		t.Fatalf("unexpected stats: %v", stats)
	}

	var health map[string]string
	rec = get(t, s, "/healthz", &health)
	if rec.Code != http.StatusOK || health["state"] != "Running" {
		t.Fatalf("node should be healthy: %d %v", rec.Code, health)
	}

	rec = get(t, s, "/metrics", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "rumor_messages_received_total") {
		t.Fatalf("metrics should expose received messages:\n%s", body)
	}
	if !strings.Contains(body, `op="messages"`) {
		t.Fatalf("metrics should count API requests:\n%s", body)
	}
}

func TestService_MethodNotAllowed(t *testing.T) {
	s, n, client := newTestService(t)
	defer client.Close()
	defer n.Shutdown()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST should be refused, not %d", rec.Code)
	}
}

func TestService_Shutdown(t *testing.T) {
	s, n, client := newTestService(t)
	defer client.Close()

	// let the node start before stopping it
	ask(t, client, "n1", proto.Read{})
	n.Shutdown()

	var health map[string]string
	rec := get(t, s, "/healthz", &health)
	if rec.Code != http.StatusServiceUnavailable || health["state"] != "Shutdown" {
		t.Fatalf("a shut down node should be unhealthy: %d %v", rec.Code, health)
	}
}
