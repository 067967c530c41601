// Package candlestate derives the user-facing lifecycle state of a candle
// from its stored fields. Every surface that shows a candle (feed, detail,
// map, sitemaps) goes through these functions so the derived state is
// consistent everywhere. All functions are pure; callers pass the clock.
package candlestate

import (
	"fmt"
	"math"
	"time"

	"candletime/api-gateway/models"
)

// DefaultLanguage is the locale used when a caller passes an unknown code.
const DefaultLanguage = "en"

// EffectiveStatus computes the status actually shown to users.
// A manually extinguished candle stays extinguished no matter what the
// expiry says; otherwise the candle is active on [created, expires) and
// expired from the expiry instant onward.
func EffectiveStatus(c models.Candle, now time.Time) string {
	if c.Status == models.CandleStatusExtinguished {
		return models.CandleStatusExtinguished
	}
	if !now.Before(c.ExpiresAt) {
		return models.CandleStatusExpired
	}
	return models.CandleStatusActive
}

type remainingStrings struct {
	aboutToExpire string
	minutes       string // takes an int
	hours         string // takes a float64
	days          string // takes a float64
}

var remainingByLang = map[string]remainingStrings{
	"en": {
		aboutToExpire: "about to expire",
		minutes:       "~%d min",
		hours:         "~%.1f h",
		days:          "~%.1f d",
	},
	"de": {
		aboutToExpire: "erlischt gleich",
		minutes:       "~%d Min.",
		hours:         "~%.1f Std.",
		days:          "~%.1f Tg.",
	},
}

// RemainingTime renders how long a candle keeps burning, in the given
// language. Buckets: below an hour in whole minutes (never "0 min"), below
// a day in hours with one decimal, a day or more in days with one decimal.
// Exactly 60 minutes is an hour value and exactly 24 hours is a day value.
func RemainingTime(expiresAt, now time.Time, lang string) string {
	strs, ok := remainingByLang[lang]
	if !ok {
		strs = remainingByLang[DefaultLanguage]
	}

	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return strs.aboutToExpire
	}

	if remaining < time.Hour {
		minutes := int(math.Round(remaining.Minutes()))
		if minutes < 1 {
			minutes = 1
		}
		if minutes < 60 {
			return fmt.Sprintf(strs.minutes, minutes)
		}
		// 59m30s and up rounds to 60; show it as an hour value instead.
		return fmt.Sprintf(strs.hours, 1.0)
	}

	if remaining < 24*time.Hour {
		return fmt.Sprintf(strs.hours, remaining.Hours())
	}

	return fmt.Sprintf(strs.days, remaining.Hours()/24)
}

var statusLabels = map[string]map[string]string{
	"en": {
		models.CandleStatusActive:       "Burning",
		models.CandleStatusExpired:      "Burned down",
		models.CandleStatusExtinguished: "Extinguished",
	},
	"de": {
		models.CandleStatusActive:       "Brennt",
		models.CandleStatusExpired:      "Abgebrannt",
		models.CandleStatusExtinguished: "Gelöscht",
	},
}

// StatusLabel maps a lifecycle status to its display string. Total: an
// unknown status falls back to the raw value rather than erroring.
func StatusLabel(status, lang string) string {
	labels, ok := statusLabels[lang]
	if !ok {
		labels = statusLabels[DefaultLanguage]
	}
	if label, ok := labels[status]; ok {
		return label
	}
	return status
}

// ShortDate renders a date-only value in the fixed dd.mm.yyyy pattern.
// The separator is always a literal dot regardless of runtime locale.
func ShortDate(t time.Time) string {
	return t.Format("02.01.2006")
}
