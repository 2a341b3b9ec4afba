package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snapbook/internal/pkg/response"
	"snapbook/internal/pkg/session"
)

// Handler handles HTTP requests for image uploads.
type Handler struct {
	service       *Service
	defaultFolder string
}

func NewHandler(service *Service, defaultFolder string) *Handler {
	return &Handler{service: service, defaultFolder: defaultFolder}
}

// Upload godoc
// @Summary Upload an image
// @Description Accepts jpeg, png, gif or webp. The type is sniffed from content.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image to upload"
// @Param folder formData string false "Target folder"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,413,502 {object} map[string]interface{}
// @Router /uploads [post]
func (h *Handler) Upload(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, "no file provided")
		return
	}
	if fileHeader.Size > MaxFileSize {
		handleError(c, ErrFileTooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, err)
		return
	}
	defer file.Close()

	folder := c.PostForm("folder")
	if folder == "" {
		folder = h.defaultFolder
	}

	upload, err := h.service.UploadImage(c.Request.Context(), sess, file, fileHeader.Filename, folder)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, upload)
}

// GetByID godoc
// @Summary Get upload metadata by ID
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /uploads/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	upload, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, upload)
}

func (h *Handler) Delete(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	if err := h.service.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListMy(c *gin.Context) {
	sess, ok := session.FromGin(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
		return
	}
	uploads, err := h.service.ListByUser(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, uploads)
}

// WriteError maps upload errors to responses. Returns false for errors it
// does not own.
func WriteError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ErrUploadNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidMimeType), errors.Is(err, ErrUnsupportedImageRef):
		response.Error(c, http.StatusBadRequest, "INVALID_IMAGE", err.Error())
	case errors.Is(err, ErrUploadFailed):
		_ = c.Error(err)
		response.Error(c, http.StatusBadGateway, "UPLOAD_FAILED", "image host is unavailable")
	default:
		return false
	}
	return true
}

func handleError(c *gin.Context, err error) {
	if !WriteError(c, err) {
		response.Internal(c, err)
	}
}
