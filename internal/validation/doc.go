// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package validation wraps go-playground/validator for API request bodies.
//
// A single validator instance is shared. ValidateStruct returns a
// RequestValidationError listing each failed field by its json name, and
// ToAPIError turns it into the VALIDATION_FAILED error payload.
package validation
