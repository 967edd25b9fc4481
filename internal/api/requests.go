// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/tomtom215/marquee/internal/recommend"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// RecommendationRequest is the body of POST /api/v1/recommendations.
//
// The validator only checks shape. Whether a mode needs event_id is left to
// the engine so both entry points report it the same way.
type RecommendationRequest struct {
	Mode    string `json:"mode" validate:"required,oneof=personalized similar trending collaborative demand_forecast"`
	UserID  string `json:"user_id" validate:"omitempty,max=128"`
	EventID string `json:"event_id" validate:"omitempty,max=128"`
	Limit   int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// ToEngineRequest converts the body to an engine request.
func (r *RecommendationRequest) ToEngineRequest() recommend.Request {
	return recommend.Request{
		Mode:    recommend.Mode(r.Mode),
		UserID:  r.UserID,
		EventID: r.EventID,
		Limit:   r.Limit,
	}
}

// InteractionRequest is the body of POST /api/v1/interactions.
type InteractionRequest struct {
	UserID          string `json:"user_id" validate:"required,max=128"`
	EventID         string `json:"event_id" validate:"required,max=128"`
	InteractionType string `json:"interaction_type" validate:"required,oneof=viewed clicked dismissed"`
	Source          string `json:"source" validate:"omitempty,max=64"`
}

// ToInteraction converts the body to an interaction without a timestamp;
// the publisher stamps it on arrival.
func (r *InteractionRequest) ToInteraction() recommend.Interaction {
	return recommend.Interaction{
		UserID:  r.UserID,
		EventID: r.EventID,
		Type:    recommend.InteractionType(r.InteractionType),
		Source:  r.Source,
	}
}

// parseLimit reads the optional "limit" query parameter. Range checks are
// left to the validator.
func parseLimit(q url.Values) (int, error) {
	raw := q.Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer: %q", raw)
	}
	return n, nil
}
