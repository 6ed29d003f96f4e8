package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"timed-exam-service/internal/app"
)

// NewRouter mounts health, REST and websocket routes.
func NewRouter(service *app.ExamService, log zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	NewRESTHandler(service, log).Register(r)
	r.HandleFunc("/ws", NewWSHandler(service, log).ServeWS)
	return r
}
