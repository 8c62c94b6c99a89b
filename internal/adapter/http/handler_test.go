package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-record-service/internal/codec"
	"github.com/couchcryptid/disaster-record-service/internal/dictionary"
	"github.com/couchcryptid/disaster-record-service/internal/domain"
	"github.com/couchcryptid/disaster-record-service/internal/ingest"
	"github.com/couchcryptid/disaster-record-service/internal/observability"
	"github.com/couchcryptid/disaster-record-service/internal/retention"
	"github.com/couchcryptid/disaster-record-service/internal/store"
)

const (
	testAdminToken = "test-secret"
	sampleID       = "0399040116408202407300630001010302001"
)

func newTestHandler(t *testing.T) (http.Handler, *store.MemoryStore, *clockwork.FakeClock) {
	t.Helper()

	// Pin the clock shortly after the sample event time so retention
	// ages are predictable.
	clock := clockwork.NewFakeClockAt(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	registry := dictionary.NewRegistry()
	idCodec := codec.New(registry)
	recordStore := store.NewMemoryStore(clock)
	pipeline := ingest.New(idCodec, recordStore, nil, logger, metrics)
	manager := retention.New(recordStore, retention.Policy{
		DefaultWindow: 90 * 24 * time.Hour,
		ArchiveGrace:  30 * 24 * time.Hour,
	}, clock, logger, metrics)

	h := NewHandler(idCodec, registry, pipeline, recordStore, manager, logger)
	return h.Routes(testAdminToken), recordStore, clock
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if admin {
		req.Header.Set(AdminTokenHeader, testAdminToken)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func rawPayload() map[string]any {
	return map[string]any{
		"lat_code":                   "39904",
		"lng_code":                   "116408",
		"event_time":                 "2024-07-30T14:30:00+08:00",
		"source_code":                "101",
		"carrier_code":               "0",
		"disaster_category_code":     "3",
		"disaster_sub_category_code": "02",
		"indicator_code":             "001",
	}
}

func TestHealth(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEncodeEndpoint(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/codec/encode", rawPayload(), false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeResponse[map[string]string](t, rec)
	assert.Equal(t, sampleID, body["id"])
}

func TestEncodeEndpointValidation(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	t.Run("bad event time", func(t *testing.T) {
		payload := rawPayload()
		payload["event_time"] = "not a time"
		rec := doRequest(t, handler, http.MethodPost, "/api/codec/encode", payload, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeResponse[apiError](t, rec)
		assert.Equal(t, "invalid_segment", body.ErrorKind)
		assert.Equal(t, "event_time", body.Field)
	})

	t.Run("out of range latitude", func(t *testing.T) {
		payload := rawPayload()
		payload["lat_code"] = "90001"
		rec := doRequest(t, handler, http.MethodPost, "/api/codec/encode", payload, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeResponse[apiError](t, rec)
		assert.Equal(t, "invalid_coordinate", body.ErrorKind)
		assert.Equal(t, "lat_code", body.Field)
	})

	t.Run("unknown code", func(t *testing.T) {
		payload := rawPayload()
		payload["indicator_code"] = "999"
		rec := doRequest(t, handler, http.MethodPost, "/api/codec/encode", payload, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeResponse[apiError](t, rec)
		assert.Equal(t, "invalid_segment", body.ErrorKind)
		assert.Equal(t, "indicator_code", body.Field)
	})
}

func TestDecodeEndpoint(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/codec/decode/"+sampleID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeResponse[map[string]any](t, rec)
	assert.Equal(t, sampleID, body["id"])
	assert.Equal(t, "39904", body["lat_code"])
	names, ok := body["names"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Housing damage", names["disaster_category"])
}

func TestDecodeEndpointMalformed(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/codec/decode/short", nil, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse[apiError](t, rec)
	assert.Equal(t, "malformed_identifier", body.ErrorKind)
}

func TestDictEndpoint(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	t.Run("structured listing", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/dict/disaster", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		listing := decodeResponse[dictionary.Listing](t, rec)
		assert.Equal(t, "disaster", listing.Domain)
		assert.NotEmpty(t, listing.Categories)
	})

	t.Run("flat listing", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/dict/carrier?flat=1", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		entries := decodeResponse[[]dictionary.Entry](t, rec)
		assert.NotEmpty(t, entries)
	})

	t.Run("unknown domain", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/dict/weather", nil, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeResponse[apiError](t, rec)
		assert.Equal(t, "unknown_domain", body.ErrorKind)
	})
}

func TestIngestRequiresAdminToken(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=raw", rawPayload(), false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeResponse[apiError](t, rec)
	assert.Equal(t, "unauthorized", body.ErrorKind)
}

func TestIngestRaw(t *testing.T) {
	handler, recordStore, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=raw", rawPayload(), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	record := decodeResponse[domain.DisasterRecord](t, rec)
	assert.Equal(t, sampleID, record.ID)
	assert.Equal(t, domain.StateActive, record.State)

	_, err := recordStore.Get(context.Background(), sampleID)
	assert.NoError(t, err)
}

func TestIngestEncoded(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	payload := map[string]any{"id": sampleID, "value": 7.0, "unit": "persons"}
	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=encoded", payload, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	record := decodeResponse[domain.DisasterRecord](t, rec)
	assert.Equal(t, sampleID, record.ID)
	require.NotNil(t, record.Value)
	assert.Equal(t, 7.0, *record.Value)
}

func TestIngestDuplicate(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=raw", rawPayload(), true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/api/ingest?mode=raw", rawPayload(), true)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeResponse[apiError](t, rec)
	assert.Equal(t, "duplicate_identifier", body.ErrorKind)
}

func TestIngestInvalidMode(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=bulk", rawPayload(), true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse[apiError](t, rec)
	assert.Equal(t, "invalid_mode", body.ErrorKind)
}

func TestIngestBatch(t *testing.T) {
	handler, recordStore, _ := newTestHandler(t)

	items := make([]map[string]any, 3)
	for i := range items {
		p := rawPayload()
		p["event_time"] = time.Date(2024, 7, 30, 6, 30+i, 0, 0, time.UTC).Format(time.RFC3339)
		items[i] = p
	}
	items[1]["carrier_code"] = "9" // unknown code

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest/batch?mode=raw", items, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	results := decodeResponse[[]batchItemResult](t, rec)
	require.Len(t, results, 3)

	assert.Equal(t, "ok", results[0].Status)
	require.NotNil(t, results[0].ID)

	assert.Equal(t, "error", results[1].Status)
	assert.Nil(t, results[1].ID)
	assert.Equal(t, "invalid_segment", results[1].ErrorKind)

	assert.Equal(t, "ok", results[2].Status)

	total, _, err := recordStore.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestIngestBatchRejectsNonArrayBody(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest/batch?mode=raw", rawPayload(), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndGetRecords(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=raw", rawPayload(), true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/storage/disaster-records", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeResponse[struct {
		Total int                     `json:"total"`
		Items []domain.DisasterRecord `json:"items"`
	}](t, rec)
	assert.Equal(t, 1, listing.Total)
	require.Len(t, listing.Items, 1)

	rec = doRequest(t, handler, http.MethodGet, "/api/storage/disaster-records/"+sampleID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	record := decodeResponse[domain.DisasterRecord](t, rec)
	assert.Equal(t, sampleID, record.ID)

	rec = doRequest(t, handler, http.MethodGet, "/api/storage/disaster-records/"+sampleID[:36]+"9", nil, false)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeResponse[apiError](t, rec)
	assert.Equal(t, "not_found", body.ErrorKind)
}

func TestListRecordsEmptyStore(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/storage/disaster-records", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total": 0, "items": []}`, rec.Body.String())
}

func TestDeleteRecord(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=raw", rawPayload(), true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodDelete, "/api/storage/disaster-records/"+sampleID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, handler, http.MethodDelete, "/api/storage/disaster-records/"+sampleID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, handler, http.MethodDelete, "/api/storage/disaster-records/"+sampleID, nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRunRetentionEndpoint(t *testing.T) {
	handler, _, clock := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/ingest?mode=raw", rawPayload(), true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, handler, http.MethodPost, "/api/storage/run-retention", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	clock.Advance(91 * 24 * time.Hour)
	rec = doRequest(t, handler, http.MethodPost, "/api/storage/run-retention", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeResponse[retention.Report](t, rec)
	assert.Equal(t, retention.Report{Scanned: 1, Archived: 1}, report)
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}
