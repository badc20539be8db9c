// internal/workers/media/crop-image/session.go
package cropimage

import (
	"context"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/models"
)

// Session holds one image while the user picks a crop rectangle. The area is
// consumed by the next ApplyCrop and then cleared.
type Session struct {
	handler *Handler
	source  string
	area    *models.CropArea
}

func NewSession(h *Handler, source string) *Session {
	return &Session{handler: h, source: source}
}

// Source returns the image the session was opened with.
func (s *Session) Source() string {
	return s.source
}

// OnCropComplete records the selected area, replacing any earlier selection.
func (s *Session) OnCropComplete(area models.CropArea) {
	s.area = &area
}

// Pending reports whether a crop area is waiting to be applied.
func (s *Session) Pending() bool {
	return s.area != nil
}

// ApplyCrop crops the source to the recorded area and returns a JPEG data URI.
func (s *Session) ApplyCrop(ctx context.Context) (string, error) {
	if s.area == nil {
		return "", stderrors.NewInvalidInputError("no crop area selected")
	}
	area := *s.area
	out, err := s.handler.Execute(ctx, &Input{ImageSource: s.source, CropArea: &area})
	if err != nil {
		return "", err
	}
	s.area = nil
	return out.CroppedImage, nil
}

// Skip discards any selection and returns the source unmodified as a data URI.
func (s *Session) Skip(ctx context.Context) (string, error) {
	s.area = nil
	out, err := s.handler.Execute(ctx, &Input{ImageSource: s.source})
	if err != nil {
		return "", err
	}
	return out.CroppedImage, nil
}
