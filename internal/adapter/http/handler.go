package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/disaster-record-service/internal/codec"
	"github.com/couchcryptid/disaster-record-service/internal/dictionary"
	"github.com/couchcryptid/disaster-record-service/internal/domain"
	"github.com/couchcryptid/disaster-record-service/internal/ingest"
	"github.com/couchcryptid/disaster-record-service/internal/retention"
	"github.com/couchcryptid/disaster-record-service/internal/store"
)

const defaultListLimit = 50

// Handler wires the REST surface to the codec, registry, ingestion
// pipeline, store, and retention manager.
type Handler struct {
	codec     *codec.Codec
	registry  *dictionary.Registry
	pipeline  *ingest.Pipeline
	store     store.RecordStore
	retention *retention.Manager
	logger    *slog.Logger
}

// NewHandler constructs the handler with its dependencies.
func NewHandler(
	c *codec.Codec,
	registry *dictionary.Registry,
	pipeline *ingest.Pipeline,
	recordStore store.RecordStore,
	retentionManager *retention.Manager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		codec:     c,
		registry:  registry,
		pipeline:  pipeline,
		store:     recordStore,
		retention: retentionManager,
		logger:    logger,
	}
}

// Routes builds the router. Mutating endpoints sit behind the admin token.
func (h *Handler) Routes(adminToken string) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/codec/encode", h.handleEncode)
		r.Get("/codec/decode/{id}", h.handleDecode)
		r.Get("/dict/{domain}", h.handleDict)
		r.Get("/storage/disaster-records", h.handleListRecords)
		r.Get("/storage/disaster-records/{id}", h.handleGetRecord)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(adminToken, h.logger))
			r.Post("/ingest", h.handleIngest)
			r.Post("/ingest/batch", h.handleIngestBatch)
			r.Delete("/storage/disaster-records/{id}", h.handleDeleteRecord)
			r.Post("/storage/run-retention", h.handleRunRetention)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// eventPayload is the wire form of a DisasterEvent. event_time accepts
// RFC 3339 or the 14-digit compact code.
type eventPayload struct {
	LatCode                 string   `json:"lat_code"`
	LngCode                 string   `json:"lng_code"`
	EventTime               string   `json:"event_time"`
	SourceCode              string   `json:"source_code"`
	CarrierCode             string   `json:"carrier_code"`
	DisasterCategoryCode    string   `json:"disaster_category_code"`
	DisasterSubCategoryCode string   `json:"disaster_sub_category_code"`
	IndicatorCode           string   `json:"indicator_code"`
	Value                   *float64 `json:"value,omitempty"`
	Unit                    string   `json:"unit,omitempty"`
	MediaPath               string   `json:"media_path,omitempty"`
	RawPayload              string   `json:"raw_payload,omitempty"`
}

func (p eventPayload) toEvent() (domain.DisasterEvent, error) {
	eventTime, err := codec.ParseEventTime(p.EventTime)
	if err != nil {
		return domain.DisasterEvent{}, &codec.InvalidSegmentError{
			Field: "event_time",
			Code:  p.EventTime,
			Err:   err,
		}
	}
	return domain.DisasterEvent{
		LatCode:                 p.LatCode,
		LngCode:                 p.LngCode,
		EventTime:               eventTime,
		SourceCode:              p.SourceCode,
		CarrierCode:             p.CarrierCode,
		DisasterCategoryCode:    p.DisasterCategoryCode,
		DisasterSubCategoryCode: p.DisasterSubCategoryCode,
		IndicatorCode:           p.IndicatorCode,
		Value:                   p.Value,
		Unit:                    p.Unit,
		MediaPath:               p.MediaPath,
		RawPayload:              p.RawPayload,
	}, nil
}

// encodedPayload is the wire form of an encoded-mode submission: the
// identifier plus the measurement fields that are not part of it.
type encodedPayload struct {
	ID         string   `json:"id"`
	Value      *float64 `json:"value,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	MediaPath  string   `json:"media_path,omitempty"`
	RawPayload string   `json:"raw_payload,omitempty"`
}

func (h *Handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, h.logger, err)
		return
	}
	event, err := payload.toEvent()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := h.codec.Encode(event)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event, err := h.codec.Decode(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID string `json:"id"`
		domain.DisasterEvent
	}{ID: id, DisasterEvent: event})
}

func (h *Handler) handleDict(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "domain")

	if r.URL.Query().Get("flat") == "1" {
		entries, err := h.registry.ListFlat(name)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}

	listing, err := h.registry.List(name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	mode, err := ingest.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	sub, err := decodeSubmission(r.Body, mode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	record, err := h.pipeline.Submit(r.Context(), mode, sub)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// batchItemResult is the wire form of one batch outcome. ID is null for
// failed items.
type batchItemResult struct {
	Index     int     `json:"index"`
	ID        *string `json:"id"`
	Status    string  `json:"status"`
	ErrorKind string  `json:"error_kind,omitempty"`
	Error     string  `json:"error,omitempty"`
}

func (h *Handler) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	mode, err := ingest.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var rawItems []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&rawItems); err != nil {
		writeError(w, h.logger, &codec.InvalidSegmentError{
			Field: "body",
			Err:   fmt.Errorf("expected a JSON array of submissions: %w", err),
		})
		return
	}

	subs := make([]ingest.Submission, len(rawItems))
	parseErrs := make([]error, len(rawItems))
	for i, raw := range rawItems {
		sub, err := decodeSubmissionJSON(raw, mode)
		if err != nil {
			parseErrs[i] = err
			continue
		}
		subs[i] = sub
	}

	results := h.pipeline.SubmitBatch(r.Context(), mode, subs)

	out := make([]batchItemResult, len(results))
	for i, res := range results {
		itemErr := parseErrs[i]
		if itemErr == nil {
			itemErr = res.Err
		}
		if itemErr != nil {
			_, body := classifyError(itemErr)
			out[i] = batchItemResult{
				Index:     i,
				Status:    "error",
				ErrorKind: body.ErrorKind,
				Error:     body.Message,
			}
			continue
		}
		out[i] = batchItemResult{Index: i, ID: &res.Record.ID, Status: "ok"}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	offset := queryInt(r, "offset", 0)

	total, records, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if records == nil {
		records = []domain.DisasterRecord{}
	}
	writeJSON(w, http.StatusOK, struct {
		Total int                     `json:"total"`
		Items []domain.DisasterRecord `json:"items"`
	}{Total: total, Items: records})
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("record deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRunRetention(w http.ResponseWriter, r *http.Request) {
	report, err := h.retention.Run(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &codec.InvalidSegmentError{Field: "body", Err: fmt.Errorf("invalid JSON body: %w", err)}
	}
	return nil
}

func decodeSubmission(body io.Reader, mode ingest.Mode) (ingest.Submission, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return ingest.Submission{}, &codec.InvalidSegmentError{Field: "body", Err: fmt.Errorf("invalid JSON body: %w", err)}
	}
	return decodeSubmissionJSON(raw, mode)
}

func decodeSubmissionJSON(raw json.RawMessage, mode ingest.Mode) (ingest.Submission, error) {
	switch mode {
	case ingest.ModeRaw:
		var payload eventPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return ingest.Submission{}, &codec.InvalidSegmentError{Field: "body", Err: fmt.Errorf("invalid raw submission: %w", err)}
		}
		event, err := payload.toEvent()
		if err != nil {
			return ingest.Submission{}, err
		}
		return ingest.Submission{Event: &event}, nil

	case ingest.ModeEncoded:
		var payload encodedPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return ingest.Submission{}, &codec.InvalidSegmentError{Field: "body", Err: fmt.Errorf("invalid encoded submission: %w", err)}
		}
		return ingest.Submission{
			ID:         payload.ID,
			Value:      payload.Value,
			Unit:       payload.Unit,
			MediaPath:  payload.MediaPath,
			RawPayload: payload.RawPayload,
		}, nil

	default:
		return ingest.Submission{}, fmt.Errorf("%w: got %q", ingest.ErrInvalidMode, mode)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
