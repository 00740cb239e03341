package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nakambe-watch/nakambe-dashboard/internal/delivery"
	"github.com/nakambe-watch/nakambe-dashboard/internal/indices"
	"github.com/nakambe-watch/nakambe-dashboard/internal/logging"
	"github.com/nakambe-watch/nakambe-dashboard/internal/maps"
	"github.com/nakambe-watch/nakambe-dashboard/output"
)

const maxFPS = 30

type errorResponse struct {
	Error string `json:"error"`
	Year  string `json:"year,omitempty"`
}

type yearsResponse struct {
	Years          []string `json:"years"`
	Extension      string   `json:"extension"`
	DefaultOpacity float64  `json:"default_opacity"`
	MinOpacity     float64  `json:"min_opacity"`
	MaxOpacity     float64  `json:"max_opacity"`
}

type degradedResponse struct {
	Blended  bool     `json:"blended"`
	Year1    string   `json:"year1"`
	Year2    string   `json:"year2"`
	Missing  []string `json:"missing"`
	Warnings []string `json:"warnings"`
}

type seriesResponse struct {
	Name      string    `json:"name"`
	Min       []float64 `json:"min"`
	Max       []float64 `json:"max"`
	Threshold []float64 `json:"threshold"`
}

type indicesResponse struct {
	Years     []string          `json:"years"`
	Series    []seriesResponse  `json:"series"`
	Anomalies []indices.Anomaly `json:"anomalies"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warnf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeMapError maps viewer errors to statuses: unknown years are bad
// requests, unavailable maps are not found.
func writeMapError(w http.ResponseWriter, year string, err error) {
	switch {
	case errors.Is(err, maps.ErrUnknownYear), errors.Is(err, maps.ErrOpacityOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Year: year})
	case maps.IsUnavailable(err):
		logging.Warnf("map %s unavailable: %v", year, err)
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("L'image pour %s est introuvable !", year),
			Year:  year,
		})
	default:
		logging.Errorf("map %s: %v", year, err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writePNG(w http.ResponseWriter, data []byte, disposition string) {
	w.Header().Set("Content-Type", maps.DownloadMIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, yearsResponse{
		Years:          s.dash.Years(),
		Extension:      s.dash.Viewer.Ext(),
		DefaultOpacity: maps.DefaultOpacity,
		MinOpacity:     maps.MinOpacity,
		MaxOpacity:     maps.MaxOpacity,
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")
	dl, err := s.dash.Viewer.View(year)
	if err != nil {
		writeMapError(w, year, err)
		return
	}
	writePNG(w, dl.Data, fmt.Sprintf("inline; filename=%q", dl.FileName))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")
	dl, err := s.dash.Viewer.View(year)
	if err != nil {
		writeMapError(w, year, err)
		return
	}
	writePNG(w, dl.Data, fmt.Sprintf("attachment; filename=%q", dl.FileName))
}

// handleCompare defaults to the first two catalog years at the default opacity.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	years := s.dash.Years()
	q := r.URL.Query()

	year1, year2 := q.Get("year1"), q.Get("year2")
	if year1 == "" && len(years) > 0 {
		year1 = years[0]
	}
	if year2 == "" && len(years) > 0 {
		year2 = years[len(years)-1]
		if len(years) > 1 {
			year2 = years[1]
		}
	}

	opacity := maps.DefaultOpacity
	if raw := q.Get("opacity"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid opacity %q", raw))
			return
		}
		opacity = v
	}

	res, err := s.dash.Viewer.Compare(year1, year2, opacity)
	if err != nil {
		writeMapError(w, "", err)
		return
	}
	if res.Degraded() {
		writeJSON(w, http.StatusOK, degradedResponse{
			Blended:  false,
			Year1:    year1,
			Year2:    year2,
			Missing:  res.Missing,
			Warnings: res.Warnings,
		})
		return
	}

	data, err := maps.EncodePNG(res.Image)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Resized {
		w.Header().Set("X-Resized", "true")
	}
	writePNG(w, data, fmt.Sprintf("inline; filename=%q", delivery.ComparisonFileName(year1, year2)))
}

func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	years := s.dash.Table.Years()
	resp := indicesResponse{Years: years, Anomalies: s.dash.Table.Anomalies()}
	for _, series := range s.dash.Table.Series() {
		min, max, threshold := series.Values(years)
		resp.Series = append(resp.Series, seriesResponse{
			Name:      series.Name,
			Min:       min,
			Max:       max,
			Threshold: threshold,
		})
	}
	if resp.Anomalies == nil {
		resp.Anomalies = []indices.Anomaly{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	data, err := s.dash.ChartPNG()
	if err != nil {
		logging.Errorf("index chart: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writePNG(w, data, "")
}

func (s *Server) handleTimelapse(w http.ResponseWriter, r *http.Request) {
	fps := int64(output.DefaultFPS)
	if raw := r.URL.Query().Get("fps"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v < 1 || v > maxFPS {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("fps must be an integer between 1 and %d", maxFPS))
			return
		}
		fps = v
	}

	dir, err := os.MkdirTemp("", "nakambe-timelapse-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer os.RemoveAll(dir)

	path, skipped, err := s.dash.WriteTimelapse(filepath.Join(dir, "timelapse.avi"), int32(fps))
	if err != nil {
		writeMapError(w, "", err)
		return
	}
	if len(skipped) > 0 {
		w.Header().Set("X-Skipped-Years", strings.Join(skipped, ","))
	}
	w.Header().Set("Content-Type", "video/x-msvideo")
	w.Header().Set("Content-Disposition", `attachment; filename="Timelapse.avi"`)
	http.ServeFile(w, r, path)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.CheckAssets(4, nil))
}

func (s *Server) handleBasin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Basin)
}
