package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultMaxImages           = 5
	DefaultVariantsPerPlatform = 3
)

// GenerationRequest is the accepted product description.
type GenerationRequest struct {
	ProductName         string `json:"product_name" validate:"required,max=200"`
	LandingURL          string `json:"landing_url" validate:"required,http_url"`
	Niche               string `json:"niche" validate:"required,max=200"`
	MaxImages           int    `json:"max_images" validate:"min=1,max=10"`
	VariantsPerPlatform int    `json:"variants_per_platform" validate:"min=1,max=5"`
	HumanReviewRequired bool   `json:"human_review_required"`
}

// InputError reports a malformed or invalid request payload.
type InputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err is, or wraps, an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// requestPayload is the wire form of GenerationRequest. Pointer fields
// tell an absent count apart from an explicit zero.
type requestPayload struct {
	ProductName         string `json:"product_name"`
	LandingURL          string `json:"landing_url"`
	Niche               string `json:"niche"`
	MaxImages           *int   `json:"max_images"`
	VariantsPerPlatform *int   `json:"variants_per_platform"`
	HumanReviewRequired bool   `json:"human_review_required"`
}

// ParseRequest decodes a JSON payload into a validated GenerationRequest.
// Absent counts take their defaults; explicit out-of-range counts,
// zero included, are rejected.
func ParseRequest(data []byte) (GenerationRequest, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return GenerationRequest{}, &InputError{Field: "data", Reason: "request data is required"}
	}
	var p requestPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return GenerationRequest{}, &InputError{Field: "data", Reason: fmt.Sprintf("invalid JSON: %v", err), Err: err}
	}
	req := GenerationRequest{
		ProductName:         p.ProductName,
		LandingURL:          p.LandingURL,
		Niche:               p.Niche,
		MaxImages:           valueOr(p.MaxImages, DefaultMaxImages),
		VariantsPerPlatform: valueOr(p.VariantsPerPlatform, DefaultVariantsPerPlatform),
		HumanReviewRequired: p.HumanReviewRequired,
	}
	return req.check()
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// check trims text fields and validates the request.
func (r GenerationRequest) check() (GenerationRequest, error) {
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.LandingURL = strings.TrimSpace(r.LandingURL)
	r.Niche = strings.TrimSpace(r.Niche)

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return GenerationRequest{}, &InputError{Field: fe.Field(), Reason: describe(fe), Err: err}
		}
		return GenerationRequest{}, &InputError{Reason: err.Error(), Err: err}
	}
	return r, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "http_url":
		return "must be a valid http(s) URL"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
