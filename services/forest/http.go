package forest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/serviceutil"
)

type aoiSummary struct {
	AOI
	AreaHa float64 `json:"area_ha"`
}

// Handler serves the detector over five json routes.
func (d *Detector) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", d.health)
	mux.HandleFunc("GET /api/aois", d.listAOIs)
	mux.HandleFunc("POST /api/analyze", d.analyze)
	mux.HandleFunc("GET /api/alerts", d.listAlerts)
	mux.HandleFunc("POST /api/alerts/{id}/ack", d.acknowledge)
	return mux
}

func (d *Detector) health(w http.ResponseWriter, r *http.Request) {
	serviceutil.WriteJson(w, http.StatusOK, map[string]any{
		"status": "ok",
		"aois":   len(d.aois),
	})
}

func (d *Detector) listAOIs(w http.ResponseWriter, r *http.Request) {
	aois := d.AOIs()
	out := make([]aoiSummary, len(aois))
	for i, aoi := range aois {
		out[i] = aoiSummary{AOI: aoi, AreaHa: PolygonAreaHa(aoi.Polygon)}
	}
	serviceutil.WriteJson(w, http.StatusOK, map[string]any{"aois": out})
}

func (d *Detector) analyze(w http.ResponseWriter, r *http.Request) {
	var req DetectionRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req)
	if err != nil {
		serviceutil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %s", err))
		return
	}

	report, err := d.Detect(r.Context(), req)
	switch {
	case errors.Is(err, ErrInvalid):
		serviceutil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownAOI):
		serviceutil.WriteError(w, http.StatusNotFound, err.Error())
	case err != nil:
		slog.ErrorContext(r.Context(), "change detection failed", "aoi", req.AOI, "err", err)
		serviceutil.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		serviceutil.WriteJson(w, http.StatusOK, report)
	}
}

func (d *Detector) listAlerts(w http.ResponseWriter, r *http.Request) {
	pending := r.URL.Query().Get("pending") == "true"
	serviceutil.WriteJson(w, http.StatusOK, map[string]any{"alerts": d.Alerts(pending)})
}

func (d *Detector) acknowledge(w http.ResponseWriter, r *http.Request) {
	alert, err := d.Acknowledge(r.PathValue("id"))
	if errors.Is(err, ErrAlertNotFound) {
		serviceutil.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	serviceutil.WriteJson(w, http.StatusOK, map[string]any{"alert": alert})
}
