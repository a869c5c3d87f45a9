package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("req-1"),
		Value:     []byte(`{"lat":42.45,"lon":-76.48,"soil":"medium","crop":"grass"}`),
		Topic:     "deficit-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("field-app")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.JSONEq(t, string(msg.Value), string(raw.Value))
	assert.Equal(t, "deficit-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "field-app", raw.Headers["source"])
	assert.Nil(t, raw.Commit)

	req, err := domain.ParseRawEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "req-1", req.ID)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 6, 26, 15, 10, 0, 0, time.UTC)
	deficit := -0.42
	fc := domain.DeficitForecast{
		ID:             "req-1",
		Request:        domain.DeficitRequest{ID: "req-1", Lat: 42.45, Lon: -76.48, Soil: domain.SoilHigh, Crop: domain.CropLegumes},
		CurrentDeficit: &deficit,
		CurrentStatus:  domain.StatusDeficitNoStress,
		ProcessedAt:    now,
	}

	msg, err := serializeToMessage(fc)
	require.NoError(t, err)

	assert.Equal(t, []byte("req-1"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "soil", msg.Headers[0].Key)
	assert.Equal(t, []byte("high"), msg.Headers[0].Value)
	assert.Equal(t, "crop", msg.Headers[1].Key)
	assert.Equal(t, []byte("legumes"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var decoded domain.DeficitForecast
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, fc.ID, decoded.ID)
	require.NotNil(t, decoded.CurrentDeficit)
	assert.Equal(t, deficit, *decoded.CurrentDeficit)
	assert.Equal(t, domain.StatusDeficitNoStress, decoded.CurrentStatus)
}
