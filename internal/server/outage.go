package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"outagemonitor/internal/history"
	"outagemonitor/internal/metrics"
	"outagemonitor/internal/models"
	"outagemonitor/internal/schedule"
)

// isoMillis matches the millisecond ISO-8601 form consumers of the API expect.
const isoMillis = "2006-01-02T15:04:05.000Z"

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type outageResponse struct {
	Title     string          `json:"title"`
	Queues    models.Schedule `json:"queues"`
	UpdatedAt string          `json:"updated_at"`
}

type queueResponse struct {
	Queue     string            `json:"queue"`
	Title     string            `json:"title"`
	Status    models.PowerState `json:"status"`
	Now       string            `json:"now"`
	Today     string            `json:"today"`
	Periods   []string          `json:"periods"`
	NextOff   *string           `json:"nextOff"`
	NextOn    *string           `json:"nextOn"`
	UpdatedAt string            `json:"updated_at"`
}

type summaryResponse struct {
	Title     string                `json:"title"`
	Queues    []metrics.QueueSupply `json:"queues"`
	UpdatedAt string                `json:"updated_at"`
}

type timelineResponse struct {
	models.QueueTimeline
	Title     string `json:"title"`
	Today     string `json:"today"`
	UpdatedAt string `json:"updated_at"`
}

// loadOutage fetches the page and parses it from scratch.
func (s *Server) loadOutage(ctx context.Context) (models.Outage, error) {
	raw, err := s.source.Page(ctx)
	if err != nil {
		s.metrics.ObserveLoadFailure("fetch")
		return models.Outage{}, err
	}
	outage, err := schedule.Parse(raw)
	if err != nil {
		kind := "markup"
		if errors.Is(err, schedule.ErrNoArticle) {
			kind = "no_article"
		}
		s.metrics.ObserveLoadFailure(kind)
		return models.Outage{}, err
	}
	return outage, nil
}

func (s *Server) handleOutage(w http.ResponseWriter, r *http.Request) {
	outage, err := s.loadOutage(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("load outage data")
		writeJSON(w, http.StatusInternalServerError, outageError(err))
		return
	}
	writeJSON(w, http.StatusOK, s.outagePayload(outage))
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	outage, err := s.loadOutage(r.Context())
	if err != nil {
		s.log.Error().Err(err).Str("queue", id).Msg("load queue data")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to load queue data"})
		return
	}

	periods, ok := outage.Queues[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Queue not found"})
		return
	}

	now := s.now().In(s.loc)
	status, err := schedule.ResolveStatus(periods, schedule.MinutesOfDay(now))
	if err != nil {
		s.log.Warn().Err(err).Str("queue", id).Msg("queue has unparsable periods")
	}

	writeJSON(w, http.StatusOK, queueResponse{
		Queue:     id,
		Title:     outage.Article.Title,
		Status:    status.Status,
		Now:       now.Format("15:04"),
		Today:     now.Format(s.dateLayout),
		Periods:   periods,
		NextOff:   status.NextOff,
		NextOn:    status.NextOn,
		UpdatedAt: s.updatedAt(),
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	outage, err := s.loadOutage(r.Context())
	if err != nil {
		s.log.Error().Err(err).Str("queue", id).Msg("load queue timeline")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to load queue data"})
		return
	}
	periods, ok := outage.Queues[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Queue not found"})
		return
	}

	points, _ := strconv.Atoi(r.URL.Query().Get("points"))
	now := s.now().In(s.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	writeJSON(w, http.StatusOK, timelineResponse{
		QueueTimeline: history.BuildQueueTimeline(id, periods, day, points),
		Title:         outage.Article.Title,
		Today:         now.Format(s.dateLayout),
		UpdatedAt:     s.updatedAt(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	outage, err := s.loadOutage(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("load outage summary")
		writeJSON(w, http.StatusInternalServerError, outageError(err))
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Title:     outage.Article.Title,
		Queues:    metrics.ComputeQueueSupply(outage.Queues),
		UpdatedAt: s.updatedAt(),
	})
}

func (s *Server) outagePayload(outage models.Outage) outageResponse {
	return outageResponse{
		Title:     outage.Article.Title,
		Queues:    outage.Queues,
		UpdatedAt: s.updatedAt(),
	}
}

func (s *Server) updatedAt() string {
	return s.now().UTC().Format(isoMillis)
}

func outageError(err error) errorResponse {
	return errorResponse{Error: "Failed to load outage data", Details: err.Error()}
}
