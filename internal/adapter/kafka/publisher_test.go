package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-record-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	record := domain.DisasterRecord{
		ID: "0399040116408202407300630001010302001",
		DisasterEvent: domain.DisasterEvent{
			LatCode:                 "39904",
			LngCode:                 "116408",
			EventTime:               time.Date(2024, 7, 30, 6, 30, 0, 0, time.UTC),
			SourceCode:              "101",
			CarrierCode:             "0",
			DisasterCategoryCode:    "3",
			DisasterSubCategoryCode: "02",
			IndicatorCode:           "001",
		},
		State:     domain.StateActive,
		CreatedAt: time.Date(2024, 7, 30, 7, 0, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(record)
	require.NoError(t, err)

	assert.Equal(t, []byte(record.ID), msg.Key)

	var decoded domain.DisasterRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, record.ID, decoded.ID)
	assert.Equal(t, record.DisasterCategoryCode, decoded.DisasterCategoryCode)
	assert.Equal(t, record.State, decoded.State)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "3", headers["disaster_category"])
	assert.Equal(t, "2024-07-30T07:00:00Z", headers["ingested_at"])
}
