package service

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/mosaicnetworks/rumor/src/node"
	"github.com/sirupsen/logrus"
)

// Service ...
type Service struct {
	sync.Mutex

	bindAddress string
	node        *node.Node
	mux         *http.ServeMux
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, n *node.Node, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		node:        n,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the service's own mux, so
// that several nodes may run in the same process.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering rumor API handlers")

	metrics := s.node.Metrics()

	s.mux.Handle("/stats", metrics.Instrument("stats", s.makeHandler(s.GetStats)))
	s.mux.Handle("/messages", metrics.Instrument("messages", s.makeHandler(s.GetMessages)))
	s.mux.Handle("/neighbors", metrics.Instrument("neighbors", s.makeHandler(s.GetNeighbors)))
	s.mux.Handle("/healthz", s.makeHandler(s.GetHealth))
	s.mux.Handle("/metrics", metrics.Handler())
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		fn(w, r)
	}
}

// Handler returns the service's routes, for embedding in another server.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving rumor API")

	err := http.ListenAndServe(s.bindAddress, s.mux)
	if err != nil {
		s.logger.Error(err)
	}
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.node.GetStats())
}

// GetMessages returns the sorted values held by the node.
func (s *Service) GetMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.node.Messages())
}

// GetNeighbors returns, for every neighbor, the values it is known to hold.
func (s *Service) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.node.Neighbors())
}

// GetHealth reports the node state. It answers 503 once the node has shut
// down.
func (s *Service) GetHealth(w http.ResponseWriter, r *http.Request) {
	state := s.node.State()
	if state == node.Shutdown {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, map[string]string{"state": state.String()})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(v)
}
