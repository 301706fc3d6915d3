package transit

import (
	"net/http"

	"github.com/WaveLink/WL-Backend/internal/web"
	"go.uber.org/zap"
)

type Handler struct {
	Network Network
	Log     *zap.SugaredLogger
}

func NewHandler(network Network, log *zap.SugaredLogger) *Handler {
	return &Handler{Network: network, Log: log}
}

// MapPoint is a terminal placed on the live map. Terminals without
// coordinates are left off.
type MapPoint struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Code string  `json:"code"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (h *Handler) LiveMap(w http.ResponseWriter, r *http.Request) {
	points := []MapPoint{}

	terminals, err := h.Network.Terminals(r.Context())
	if err != nil {
		web.Report(r, h.Log, web.Upstream(err), "Error loading map")
	}
	for _, t := range terminals {
		if t.Latitude == nil || t.Longitude == nil {
			continue
		}
		points = append(points, MapPoint{ID: t.ID, Name: t.Name, Code: t.Code, Lat: *t.Latitude, Lng: *t.Longitude})
	}

	web.Render(w, r, "live_map", map[string]interface{}{"terminals": points})
}
