// internal/workers/media/crop-image/models.go
package cropimage

import "claimcheck/internal/models"

// Input names an image by data:, blob:, http(s): or file: URL. A nil CropArea
// passes the image through unmodified.
type Input struct {
	ImageSource string           `json:"imageSource"`
	CropArea    *models.CropArea `json:"cropArea,omitempty"`
}

type Output struct {
	CroppedImage string `json:"croppedImage"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}
