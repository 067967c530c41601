package candlestate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"candletime/api-gateway/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func candleWith(status string, expiresAt time.Time) models.Candle {
	return models.Candle{Status: status, ExpiresAt: expiresAt}
}

func TestEffectiveStatus(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		expiresAt time.Time
		want      string
	}{
		{"active before expiry", models.CandleStatusActive, testNow.Add(time.Hour), models.CandleStatusActive},
		{"expired after expiry", models.CandleStatusActive, testNow.Add(-time.Hour), models.CandleStatusExpired},
		{"expired exactly at expiry", models.CandleStatusActive, testNow, models.CandleStatusExpired},
		{"extinguished wins over future expiry", models.CandleStatusExtinguished, testNow.Add(time.Hour), models.CandleStatusExtinguished},
		{"extinguished wins over past expiry", models.CandleStatusExtinguished, testNow.Add(-240 * time.Hour), models.CandleStatusExtinguished},
		{"extinguished wins far in the future", models.CandleStatusExtinguished, testNow.Add(10000 * time.Hour), models.CandleStatusExtinguished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveStatus(candleWith(tt.stored, tt.expiresAt), testNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemainingTime_Buckets(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"negative", -time.Minute, "about to expire"},
		{"zero", 0, "about to expire"},
		{"thirty seconds floors to one minute", 30 * time.Second, "~1 min"},
		{"ninety seconds rounds to two", 90 * time.Second, "~2 min"},
		{"fifty-nine minutes stays in minutes", 59 * time.Minute, "~59 min"},
		{"just under an hour rounds into hours", 59*time.Minute + 45*time.Second, "~1.0 h"},
		{"exactly one hour routes to hours", time.Hour, "~1.0 h"},
		{"two hours", 2 * time.Hour, "~2.0 h"},
		{"23 hours stays in hours", 23 * time.Hour, "~23.0 h"},
		{"exactly 24 hours routes to days", 24 * time.Hour, "~1.0 d"},
		{"36 hours", 36 * time.Hour, "~1.5 d"},
		{"a week", 7 * 24 * time.Hour, "~7.0 d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemainingTime(testNow.Add(tt.remaining), testNow, "en")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemainingTime_Localized(t *testing.T) {
	assert.Equal(t, "~5 Min.", RemainingTime(testNow.Add(5*time.Minute), testNow, "de"))
	assert.Equal(t, "erlischt gleich", RemainingTime(testNow, testNow, "de"))
	// Unknown languages fall back to English.
	assert.Equal(t, "~5 min", RemainingTime(testNow.Add(5*time.Minute), testNow, "fr"))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Burning", StatusLabel(models.CandleStatusActive, "en"))
	assert.Equal(t, "Burned down", StatusLabel(models.CandleStatusExpired, "en"))
	assert.Equal(t, "Extinguished", StatusLabel(models.CandleStatusExtinguished, "en"))
	assert.Equal(t, "Brennt", StatusLabel(models.CandleStatusActive, "de"))
	// Total over unknown inputs.
	assert.Equal(t, "weird", StatusLabel("weird", "en"))
	assert.Equal(t, "Burning", StatusLabel(models.CandleStatusActive, "xx"))
}

func TestShortDate(t *testing.T) {
	assert.Equal(t, "05.01.2025", ShortDate(time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "31.12.2024", ShortDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}
