package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"photo-enhance-backend/internal/codec"
	"photo-enhance-backend/internal/database"
	"photo-enhance-backend/internal/middleware"
	"photo-enhance-backend/internal/models"
	"photo-enhance-backend/internal/supabase"
	"photo-enhance-backend/internal/topaz"
)

type EnhanceHandler struct {
	topazClient    *topaz.Client
	dbClient       *database.Client
	storageClient  *supabase.StorageClient
	realtimeClient *supabase.RealtimeClient
	defaultTimeout time.Duration
}

func NewEnhanceHandler(
	topazClient *topaz.Client,
	dbClient *database.Client,
	storageClient *supabase.StorageClient,
	realtimeClient *supabase.RealtimeClient,
	defaultTimeout time.Duration,
) *EnhanceHandler {
	return &EnhanceHandler{
		topazClient:    topazClient,
		dbClient:       dbClient,
		storageClient:  storageClient,
		realtimeClient: realtimeClient,
		defaultTimeout: defaultTimeout,
	}
}

// Enhance godoc
// @Summary     Enhance an image
// @Description Submits the uploaded image to the Topaz Image API, waits for completion, and returns the processed image bytes. The whole remote workflow (submit, poll, download) runs inside this one call.
// @Tags        enhance
// @Accept      multipart/form-data
// @Produce     image/jpeg
// @Security    Bearer
// @Param       image formData file true "Source image"
// @Param       mode formData string true "Processing mode: enhance, sharpen, denoise, restore, lighting"
// @Param       model formData string true "Model name from the mode's allow-list (see GET /models)"
// @Param       output_format formData string false "jpeg (default), png, or tiff"
// @Param       scale formData number false "Scale multiplier; overrides width/height when not 1.0"
// @Param       width formData int false "Explicit output width (enhance mode only)"
// @Param       height formData int false "Explicit output height (enhance mode only)"
// @Success     200 {file} binary
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     504 {object} models.ErrorResponse
// @Router      /enhance [post]
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing image file",
			Message: err.Error(),
		})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to open uploaded file",
			Message: err.Error(),
		})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read uploaded file",
			Message: err.Error(),
		})
		return
	}

	img, srcWidth, srcHeight, err := codec.Decode(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "uploaded file is not a decodable image",
			Message: err.Error(),
		})
		return
	}

	// Normalize the input the same way for every output format: flatten
	// alpha and re-encode to JPEG for submission.
	normalized, err := codec.Encode(codec.Flatten(img), topaz.FormatJPEG)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to encode input image",
			Message: err.Error(),
		})
		return
	}

	// Stage the encoded input in a temp file, removed on every exit path.
	tmp, err := os.CreateTemp("", "topaz-input-*.jpg")
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to stage input image",
			Message: err.Error(),
		})
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(normalized); err != nil {
		tmp.Close()
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to stage input image",
			Message: err.Error(),
		})
		return
	}
	if err := tmp.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to stage input image",
			Message: err.Error(),
		})
		return
	}
	payload, err := os.ReadFile(tmpPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to read staged input image",
			Message: err.Error(),
		})
		return
	}

	req, err := h.buildProcessRequest(c, payload, srcWidth, srcHeight)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request options",
			Message: err.Error(),
		})
		return
	}

	jobID := uuid.New()
	if h.dbClient != nil {
		if _, err := h.dbClient.CreateJob(jobID, userID, string(req.Mode), req.Model, string(req.OutputFormat)); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to record job",
				Message: err.Error(),
			})
			return
		}
	}

	result, err := h.topazClient.Process(c.Request.Context(), *req)
	if err != nil {
		processID := processIDFromError(err)
		if h.dbClient != nil {
			if processID != "" {
				h.dbClient.SetJobProcessID(jobID, processID)
			}
			h.dbClient.UpdateJobError(jobID, err.Error())
		}
		if h.realtimeClient != nil {
			h.realtimeClient.PublishJobEvent(jobID, "job_failed",
				supabase.JobFailedPayload(jobID, err.Error()))
		}
		status := statusForProcessError(err)
		c.JSON(status, models.ErrorResponse{
			Error:     "processing failed",
			Message:   err.Error(),
			ProcessID: processID,
		})
		return
	}

	storageURL := h.storeResult(jobID, userID, result)

	if h.dbClient != nil {
		h.dbClient.SetJobProcessID(jobID, result.ProcessID)
		h.dbClient.UpdateJobStatus(jobID, "completed", 100)
	}
	if h.realtimeClient != nil {
		h.realtimeClient.PublishJobEvent(jobID, "job_completed",
			supabase.JobCompletedPayload(jobID, storageURL))
	}

	c.Header("X-Job-ID", jobID.String())
	c.Header("X-Process-ID", result.ProcessID)
	if storageURL != "" {
		c.Header("X-Storage-URL", storageURL)
	}
	if result.DimensionsOverridden {
		c.Header("X-Dimensions-Overridden", "true")
	}
	c.Data(http.StatusOK, codec.MimeType(result.Format), result.Bytes)
}

// storeResult persists the artifact to Supabase storage and the job_files
// table. Best-effort: the response still carries the image bytes even when
// storage is unavailable.
func (h *EnhanceHandler) storeResult(jobID, userID uuid.UUID, result *topaz.ProcessResult) string {
	if h.storageClient == nil {
		return ""
	}
	extensions := map[topaz.OutputFormat]string{
		topaz.FormatJPEG: "jpg",
		topaz.FormatPNG:  "png",
		topaz.FormatTIFF: "tiff",
	}
	filename := fmt.Sprintf("enhanced_%s_%s.%s",
		result.ProcessID, time.Now().Format("20060102_150405"), extensions[result.Format])

	storagePath, storageURL, err := h.storageClient.UploadResult(
		userID, jobID, filename, codec.MimeType(result.Format), result.Bytes)
	if err != nil {
		return ""
	}

	if h.dbClient != nil {
		h.dbClient.CreateJobFile(&models.JobFile{
			ID:          uuid.New(),
			JobID:       jobID,
			UserID:      userID,
			Filename:    filename,
			StoragePath: storagePath,
			StorageURL:  storageURL,
			FileSize:    sql.NullInt64{Int64: int64(len(result.Bytes)), Valid: true},
			MimeType:    codec.MimeType(result.Format),
		})
	}
	return storageURL
}

func (h *EnhanceHandler) buildProcessRequest(c *gin.Context, payload []byte, srcWidth, srcHeight int) (*topaz.ProcessRequest, error) {
	req := &topaz.ProcessRequest{
		Mode:         topaz.Mode(c.PostForm("mode")),
		Model:        c.PostForm("model"),
		Image:        payload,
		ContentType:  "image/jpeg",
		OutputFormat: topaz.OutputFormat(c.DefaultPostForm("output_format", "jpeg")),
		SourceWidth:  srcWidth,
		SourceHeight: srcHeight,
		Timeout:      h.defaultTimeout,
	}

	var err error
	if req.Width, err = formInt(c, "width"); err != nil {
		return nil, err
	}
	if req.Height, err = formInt(c, "height"); err != nil {
		return nil, err
	}
	if req.ScaleMultiplier, err = formFloat(c, "scale"); err != nil {
		return nil, err
	}
	if req.CropToFill, err = formBool(c, "crop_to_fill"); err != nil {
		return nil, err
	}
	if req.FaceEnhancement, err = formBoolPtr(c, "face_enhancement"); err != nil {
		return nil, err
	}
	if req.DenoiseStrength, err = formFloatPtr(c, "denoise_strength"); err != nil {
		return nil, err
	}
	if req.SharpenStrength, err = formFloatPtr(c, "sharpen_strength"); err != nil {
		return nil, err
	}
	if req.Strength, err = formFloatPtr(c, "strength"); err != nil {
		return nil, err
	}
	if req.FixCompression, err = formFloatPtr(c, "fix_compression"); err != nil {
		return nil, err
	}

	if v := c.PostForm("timeout_seconds"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("timeout_seconds must be a positive integer")
		}
		req.Timeout = time.Duration(seconds) * time.Second
	}
	return req, nil
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

func statusForProcessError(err error) int {
	var invalid *topaz.InvalidInputError
	var timeout *topaz.TimeoutError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// processIDFromError recovers the remote job identifier from any error
// kind that carries one, for the manual-recovery hint in responses.
func processIDFromError(err error) string {
	var remote *topaz.RemoteJobError
	var status *topaz.StatusCheckError
	var timeout *topaz.TimeoutError
	var download *topaz.DownloadValidationError
	switch {
	case errors.As(err, &remote):
		return remote.ProcessID
	case errors.As(err, &status):
		return status.ProcessID
	case errors.As(err, &timeout):
		return timeout.ProcessID
	case errors.As(err, &download):
		return download.ProcessID
	}
	return ""
}

func formInt(c *gin.Context, field string) (int, error) {
	v := c.PostForm(field)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", field)
	}
	return n, nil
}

func formFloat(c *gin.Context, field string) (float64, error) {
	v := c.PostForm(field)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return f, nil
}

func formBool(c *gin.Context, field string) (bool, error) {
	v := c.PostForm(field)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", field)
	}
	return b, nil
}

func formBoolPtr(c *gin.Context, field string) (*bool, error) {
	v := c.PostForm(field)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", field)
	}
	return &b, nil
}

func formFloatPtr(c *gin.Context, field string) (*float64, error) {
	v := c.PostForm(field)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", field)
	}
	return &f, nil
}
