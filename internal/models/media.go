// internal/models/media.go
package models

// CropArea is a rectangle in source-image pixel space.
type CropArea struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageCheckResult is the outcome of one OCR attempt. Failures are carried
// in-band: Success is false, ExtractedText is empty and Error says why.
type ImageCheckResult struct {
	ExtractedText string `json:"extractedText"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// OCREnvelope is the /check-image response body.
type OCREnvelope struct {
	ExtractedText *string `json:"extracted-text"`
}
