// internal/workers/media/crop-image/handler.go
package cropimage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	stderrors "claimcheck/internal/common/errors"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/metrics"
	"claimcheck/internal/models"
)

const (
	TaskType = "crop-image"

	outputMediaType = "image/jpeg"
	maxCropPixels   = 100_000_000
)

var (
	ErrImageLoad   = errors.New("IMAGE_LOAD_FAILED")
	ErrImageEncode = errors.New("IMAGE_ENCODE_FAILED")
)

// Fetcher dereferences remote image URLs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

type Handler struct {
	config     *Config
	fetcher    Fetcher
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, fetcher Fetcher, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		fetcher:    fetcher,
		logger:     scoped,
		errHandler: stderrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, stderrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// Execute loads the source image and crops it to the requested area. The
// crop is drawn onto a fresh canvas of exactly Width x Height; any part of
// the area outside the source stays blank.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ImageSource) == "" {
		return nil, stderrors.NewInvalidInputError("imageSource is required")
	}
	if input.CropArea != nil {
		if err := validateArea(*input.CropArea); err != nil {
			return nil, err
		}
	}

	data, contentType, err := h.load(ctx, input.ImageSource)
	if err != nil {
		return nil, err
	}

	if input.CropArea == nil {
		return h.passThrough(input.ImageSource, data, contentType)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, stderrors.NewImageLoadFailedError(fmt.Errorf("%w: decode: %v", ErrImageLoad, err))
	}

	cropped := Crop(src, *input.CropArea)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: h.config.JPEGQuality}); err != nil {
		return nil, stderrors.NewImageEncodeFailedError(fmt.Errorf("%w: %v", ErrImageEncode, err))
	}

	h.logger.Debug("image cropped", map[string]interface{}{
		"sourceFormat": format,
		"sourceBounds": src.Bounds().String(),
		"cropArea":     *input.CropArea,
		"outputBytes":  buf.Len(),
	})

	return &Output{
		CroppedImage: models.EncodeDataURI(outputMediaType, buf.Bytes()),
		Width:        input.CropArea.Width,
		Height:       input.CropArea.Height,
	}, nil
}

// Crop copies area of src onto a new RGBA canvas anchored at the origin.
// Area coordinates are relative to src.Bounds().Min.
func Crop(src image.Image, area models.CropArea) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, area.Width, area.Height))
	sr := image.Rect(area.X, area.Y, area.X+area.Width, area.Y+area.Height).Add(src.Bounds().Min)
	xdraw.Copy(dst, image.Point{}, src, sr, xdraw.Src, nil)
	return dst
}

func validateArea(area models.CropArea) error {
	if area.Width <= 0 || area.Height <= 0 {
		return stderrors.NewInvalidInputError("crop area must have positive width and height")
	}
	if int64(area.Width)*int64(area.Height) > maxCropPixels {
		return stderrors.NewInvalidInputError("crop area is too large")
	}
	return nil
}

func (h *Handler) passThrough(source string, data []byte, contentType string) (*Output, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, stderrors.NewImageLoadFailedError(fmt.Errorf("%w: decode config: %v", ErrImageLoad, err))
	}
	if models.IsDataURI(source) {
		return &Output{CroppedImage: source, Width: cfg.Width, Height: cfg.Height}, nil
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &Output{
		CroppedImage: models.EncodeDataURI(contentType, data),
		Width:        cfg.Width,
		Height:       cfg.Height,
	}, nil
}

func (h *Handler) load(ctx context.Context, source string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)

	switch {
	case models.IsDataURI(source):
		d, err := models.ParseDataURI(source)
		if err != nil {
			return nil, "", stderrors.NewImageLoadFailedError(fmt.Errorf("%w: %v", ErrImageLoad, err))
		}
		data, contentType = d.Data, d.MediaType

	case models.IsBlobURI(source):
		return h.fetch(ctx, strings.TrimPrefix(source, "blob:"))

	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return h.fetch(ctx, source)

	case strings.HasPrefix(source, "file://"):
		u, err := url.Parse(source)
		if err != nil {
			return nil, "", stderrors.NewImageLoadFailedError(fmt.Errorf("%w: %v", ErrImageLoad, err))
		}
		data, err = h.readFile(u.Path)
		if err != nil {
			return nil, "", err
		}

	default:
		return nil, "", stderrors.NewUnsupportedImageSourceError(source)
	}

	if int64(len(data)) > h.config.MaxSourceBytes {
		return nil, "", stderrors.NewImageLoadFailedError(fmt.Errorf("%w: source exceeds %d bytes", ErrImageLoad, h.config.MaxSourceBytes))
	}
	return data, contentType, nil
}

func (h *Handler) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if h.fetcher == nil {
		return nil, "", stderrors.NewImageLoadFailedError(fmt.Errorf("%w: no fetcher configured for %s", ErrImageLoad, rawURL))
	}
	data, contentType, err := h.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, "", stderrors.NewImageLoadFailedError(fmt.Errorf("%w: %w", ErrImageLoad, err))
	}
	if int64(len(data)) > h.config.MaxSourceBytes {
		return nil, "", stderrors.NewImageLoadFailedError(fmt.Errorf("%w: source exceeds %d bytes", ErrImageLoad, h.config.MaxSourceBytes))
	}
	return data, contentType, nil
}

func (h *Handler) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, stderrors.NewImageLoadFailedError(fmt.Errorf("%w: %v", ErrImageLoad, err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.config.MaxSourceBytes+1))
	if err != nil {
		return nil, stderrors.NewImageLoadFailedError(fmt.Errorf("%w: %v", ErrImageLoad, err))
	}
	return data, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
		"width":  output.Width,
		"height": output.Height,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := stderrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}
