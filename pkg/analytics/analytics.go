// Package analytics computes word counts and reading-time estimates.
package analytics

import (
	"math"
	"strings"

	"github.com/dtnitsch/readtime/models"
)

// WordCount returns the number of whitespace-separated tokens in text.
func WordCount(text string) int {
	// strings.Fields trims and splits on any run of whitespace
	return len(strings.Fields(text))
}

// EstimateMinutes returns ceil(words/wordsPerMinute), never less than one
// minute. A non-positive word count yields 0, meaning "no content".
// A non-positive speed falls back to models.DefaultReadingSpeed.
func EstimateMinutes(words, wordsPerMinute int) int {
	if words <= 0 {
		return 0
	}
	if wordsPerMinute <= 0 {
		wordsPerMinute = models.DefaultReadingSpeed
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return max(1, minutes)
}

// RemainingMinutes is the reading time left at the given progress, rounded up.
func RemainingMinutes(readingTime int, progress float64) int {
	if readingTime <= 0 {
		return 0
	}
	left := float64(readingTime) * (100 - models.ClampPercent(progress)) / 100
	return int(math.Ceil(left))
}

// MinutesRead is the share of readingTime already covered at progress.
func MinutesRead(readingTime int, progress float64) int {
	if readingTime <= 0 {
		return 0
	}
	return int(math.Round(float64(readingTime) * models.ClampPercent(progress) / 100))
}
