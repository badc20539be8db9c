// internal/models/envelope.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrPayloadDecode marks any failure in the two-stage envelope decode.
var ErrPayloadDecode = errors.New("failed to parse")

// DecodeStage names which half of the envelope decode failed.
type DecodeStage string

const (
	StageEnvelope DecodeStage = "envelope"
	StagePayload  DecodeStage = "payload"
)

// DecodeError is returned when either the transport envelope or the JSON
// document nested in its string field cannot be decoded.
type DecodeError struct {
	Stage DecodeStage
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s (%s): %v", e.Stage, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrPayloadDecode
}

// VerificationEnvelope is the body of /manual-check and /check-raw: a JSON
// object whose extracted-text field holds a JSON-encoded VerificationResult.
type VerificationEnvelope struct {
	ExtractedText string `json:"extracted-text"`
}

// SuggestionsEnvelope is the body of /suggestions: response holds a
// JSON-encoded AlternativesResponse.
type SuggestionsEnvelope struct {
	Response string `json:"response"`
}

// DecodeVerification performs both decode stages on a verification body.
func DecodeVerification(body []byte) (*VerificationResult, error) {
	var env VerificationEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Stage: StageEnvelope, Field: "extracted-text", Err: err}
	}
	return env.Verification()
}

// Verification decodes the nested document.
func (e VerificationEnvelope) Verification() (*VerificationResult, error) {
	var result VerificationResult
	if err := json.Unmarshal([]byte(e.ExtractedText), &result); err != nil {
		return nil, &DecodeError{Stage: StagePayload, Field: "extracted-text", Err: err}
	}
	return &result, nil
}

// EncodeVerification wraps r the way the backend does.
func EncodeVerification(r VerificationResult) ([]byte, error) {
	inner, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(VerificationEnvelope{ExtractedText: string(inner)})
}

// DecodeAlternatives performs both decode stages on a /suggestions body. An
// empty response field decodes to no alternatives and no error.
func DecodeAlternatives(body []byte) ([]AlternativeProduct, error) {
	var env SuggestionsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Stage: StageEnvelope, Field: "response", Err: err}
	}
	if env.Response == "" {
		return nil, nil
	}
	var alts AlternativesResponse
	if err := json.Unmarshal([]byte(env.Response), &alts); err != nil {
		return nil, &DecodeError{Stage: StagePayload, Field: "response", Err: err}
	}
	return alts.Alternatives, nil
}
