package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// envelope is the response shape every endpoint returns: the payload
// under data, request/trace metadata alongside it.
type envelope struct {
	Data     interface{} `json:"data"`
	Metadata metadata    `json:"metadata"`
}

type metadata struct {
	RequestID   string    `json:"request_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (s *Server) writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	reqID := middleware.GetReqID(r.Context())
	if reqID == "" {
		reqID = uuid.New().String()
	}
	s.writeJSON(w, status, envelope{
		Data: data,
		Metadata: metadata{
			RequestID:   reqID,
			GeneratedAt: time.Now().UTC(),
		},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode json response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeData(w, r, status, map[string]string{"error": message})
}
