package models

import (
	"time"

	"github.com/Temutjin2k/geopulse/internal/domain/types"
)

// AttentionPayload is the content of the attention slot. Which fields are set depends on the mode.
type AttentionPayload struct {
	Title    string         `json:"title,omitempty"`
	Message  string         `json:"message,omitempty"`
	Severity types.Severity `json:"severity,omitempty"`
	Icon     string         `json:"icon,omitempty"`

	// tracking and detail
	Name     string `json:"name,omitempty"`
	Distance string `json:"distance,omitempty"`
	Speed    string `json:"speed,omitempty"`
	ETA      string `json:"eta,omitempty"`
	Arrival  string `json:"arrival,omitempty"`

	// large value view
	Value string `json:"value,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// AttentionState is the single shared display slot.
type AttentionState struct {
	Mode      types.AttentionMode `json:"mode"`
	Payload   AttentionPayload    `json:"payload"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
	Expanded  bool                `json:"expanded"`
	Version   uint64              `json:"version"`
}
