package strategy

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Handler serves the duel API backed by p: "/" is a health check and
// "/duel" takes the same query the Remote client sends.
func Handler(p Provider) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "active", "service": "pitwall strategy"})
	})
	mux.HandleFunc("/duel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		res, err := p.Duel(r.Context(), req)
		if err != nil {
			http.Error(w, "simulation failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, Response{
			Meta:    Meta{Track: req.Track, Drivers: []string{req.Driver1, req.Driver2}},
			Results: res,
		})
	})
	return mux
}

func parseQuery(r *http.Request) (Request, error) {
	q := r.URL.Query()
	req := Request{
		Driver1: q.Get("d1"),
		Driver2: q.Get("d2"),
		Track:   q.Get("track"),
	}
	var err error
	if req.Pit1, err = strconv.Atoi(q.Get("d1_pit")); err != nil {
		return req, ErrInvalidRequest
	}
	if req.Pit2, err = strconv.Atoi(q.Get("d2_pit")); err != nil {
		return req, ErrInvalidRequest
	}
	if req.Tire1, err = ParseCompound(q.Get("d1_tire")); err != nil {
		return req, err
	}
	if req.Tire2, err = ParseCompound(q.Get("d2_tire")); err != nil {
		return req, err
	}
	return req, req.Validate()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
