// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package interactions

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Message metadata keys.
const (
	MetadataType   = "interaction_type"
	MetadataSource = "source"
)

// ErrMalformed marks a payload that can never be decoded into a valid
// interaction. Consumers ack such messages instead of retrying them.
var ErrMalformed = errors.New("malformed interaction")

// ValidType reports whether t is a known interaction type.
func ValidType(t recommend.InteractionType) bool {
	switch t {
	case recommend.InteractionViewed, recommend.InteractionClicked, recommend.InteractionDismissed:
		return true
	default:
		return false
	}
}

// Encode builds a watermill message for it.
func Encode(it recommend.Interaction) (*message.Message, error) {
	payload, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("encode interaction: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataType, string(it.Type))
	msg.Metadata.Set(MetadataSource, it.Source)
	return msg, nil
}

// Decode parses and validates a message payload.
func Decode(msg *message.Message) (recommend.Interaction, error) {
	var it recommend.Interaction
	if err := json.Unmarshal(msg.Payload, &it); err != nil {
		return it, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if it.UserID == "" || it.EventID == "" {
		return it, fmt.Errorf("%w: user_id and event_id are required", ErrMalformed)
	}
	if !ValidType(it.Type) {
		return it, fmt.Errorf("%w: unknown interaction_type %q", ErrMalformed, it.Type)
	}
	if it.OccurredAt.IsZero() {
		return it, fmt.Errorf("%w: occurred_at is required", ErrMalformed)
	}
	return it, nil
}
