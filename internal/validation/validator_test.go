// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=fast slow"`
	UserID string `json:"user_id" validate:"omitempty,max=8"`
	Limit  int    `json:"limit" validate:"omitempty,min=1,max=100"`
	Note   string `validate:"omitempty,min=3"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      sampleRequest
		wantFields []string
		wantMsg    string
	}{
		{name: "valid", input: sampleRequest{Mode: "fast", UserID: "u1", Limit: 10}},
		{name: "zero limit is omitted", input: sampleRequest{Mode: "slow"}},
		{name: "missing mode", input: sampleRequest{}, wantFields: []string{"mode"}, wantMsg: "mode is required"},
		{name: "unknown mode", input: sampleRequest{Mode: "warp"}, wantFields: []string{"mode"}, wantMsg: "mode must be one of: fast slow"},
		{name: "limit too large", input: sampleRequest{Mode: "fast", Limit: 101}, wantFields: []string{"limit"}, wantMsg: "limit must be at most 100"},
		{name: "user id too long", input: sampleRequest{Mode: "fast", UserID: "123456789"}, wantFields: []string{"user_id"}, wantMsg: "user_id must be at most 8 characters"},
		{name: "field without json tag", input: sampleRequest{Mode: "fast", Note: "ab"}, wantFields: []string{"Note"}, wantMsg: "Note must be at least 3 characters"},
		{name: "several failures", input: sampleRequest{Mode: "warp", Limit: 500}, wantFields: []string{"mode", "limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors, want %d: %v", len(verr.Fields), len(tt.wantFields), verr)
			}
			for i, f := range tt.wantFields {
				if verr.Fields[i].Field != f {
					t.Errorf("Fields[%d].Field = %q, want %q", i, verr.Fields[i].Field, f)
				}
			}
			if tt.wantMsg != "" && verr.Fields[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", verr.Fields[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	verr := ValidateStruct(&sampleRequest{Mode: "warp", Limit: 500})
	if verr == nil {
		t.Fatal("expected validation error")
	}
	apiErr := verr.ToAPIError()
	if apiErr.Code != CodeValidationFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, CodeValidationFailed)
	}
	if !strings.Contains(apiErr.Message, "mode") || !strings.Contains(apiErr.Message, "limit") {
		t.Errorf("Message = %q, want both fields", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %#v", apiErr.Details["fields"])
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "validation failed" || empty.Details != nil {
		t.Errorf("empty ToAPIError() = %+v", empty)
	}
}
