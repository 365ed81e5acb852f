package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"LaserRocket/internal/recorder"
)

// flightSource is the read side of the flight store.
type flightSource interface {
	ListFlights(room string, limit int) ([]recorder.FlightSummary, error)
	LoadFlight(id string) (*recorder.Flight, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func newMux(sim *Sim, flights flightSource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(sim, w, r)
	})
	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, r *http.Request) {
		ids := []string{}
		for _, room := range sim.hub.Snapshot() {
			ids = append(ids, room.ID)
		}
		writeJSON(w, http.StatusOK, ids)
	})
	mux.HandleFunc("GET /flights", func(w http.ResponseWriter, r *http.Request) {
		if flights == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "recorder disabled"})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := flights.ListFlights(r.URL.Query().Get("room"), limit)
		if err != nil {
			log.Printf("list flights: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
			return
		}
		out := make([]flightDTO, 0, len(list))
		for _, f := range list {
			out = append(out, flightDTO{
				ID:          f.ID,
				Room:        f.Room,
				Class:       f.Class,
				Mode:        f.Mode,
				LaunchedAt:  f.LaunchedAt,
				EndedAt:     f.EndedAt,
				Outcome:     f.Outcome,
				SampleCount: f.SampleCount,
			})
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /flights/{id}", func(w http.ResponseWriter, r *http.Request) {
		if flights == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "recorder disabled"})
			return
		}
		f, err := flights.LoadFlight(r.PathValue("id"))
		if err != nil {
			log.Printf("load flight: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "load failed"})
			return
		}
		if f == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such flight"})
			return
		}
		writeJSON(w, http.StatusOK, f)
	})
	return mux
}
