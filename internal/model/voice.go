package model

import "time"

// VoiceCommand is a final speech-recognition result.
type VoiceCommand struct {
	Transcript string  `json:"transcript" binding:"required"`
	Confidence float64 `json:"confidence"`
}

// VoiceHistoryEntry records a transcript that produced a non-empty
// filter set, most recent first in the history list.
type VoiceHistoryEntry struct {
	Transcript string      `json:"transcript"`
	Confidence float64     `json:"confidence"`
	Filters    FilterState `json:"filters"`
	Timestamp  time.Time   `json:"timestamp"`
}

// VoiceState is the confidence-gate state machine position.
type VoiceState string

const (
	VoiceIdle         VoiceState = "idle"
	VoiceListening    VoiceState = "listening"
	VoicePendingRetry VoiceState = "pending_retry"
)
