package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"

	"connectrpc.com/connect"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Running  bool   `json:"running"`
	Scanning bool   `json:"scanning"`
}

// RegisterHttp adds the plain json routes used by the web dashboard.
func (s Service) RegisterHttp(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("GET /api/stats", s.authorized(s.httpStats))
	mux.HandleFunc("GET /api/threats", s.authorized(s.httpThreats))
}

func (s Service) authorized(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !serviceutil.BearerMatches(r.Header.Get("Authorization"), s.token) {
			writeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			return
		}
		next(w, r)
	}
}

func (s Service) health(w http.ResponseWriter, r *http.Request) {
	status := s.monitor.Status()
	res := healthResponse{
		Status:   "ok",
		Database: "ok",
		Running:  status.Running,
		Scanning: status.Scanning,
	}
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "health check: database unreachable", "err", err)
		res.Status = "degraded"
		res.Database = err.Error()
		code = http.StatusServiceUnavailable
	}
	writeJson(w, code, res)
}

func (s Service) httpStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, http.StatusOK, res)
}

func (s Service) httpThreats(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
	}

	packages, err := s.threats(r.Context(), r.URL.Query().Get("level"), limit)
	if err != nil {
		writeError(w, httpStatus(err), err)
		return
	}
	writeJson(w, http.StatusOK, ListThreatsResponse{Threats: packages})
}

func httpStatus(err error) int {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return http.StatusInternalServerError
	}
	switch connectErr.Code() {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJson(w http.ResponseWriter, status int, value any) {
	serviceutil.WriteJson(w, status, value)
}

func writeError(w http.ResponseWriter, status int, err error) {
	message := err.Error()
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		message = connectErr.Message()
	}
	serviceutil.WriteError(w, status, message)
}
