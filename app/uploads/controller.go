package uploads

import (
	"errors"
	"net/http"

	"realtor/core/logger"
	"realtor/core/router"
	"realtor/core/storage"
	"realtor/core/types"
)

type UploadController struct {
	service *UploadService
	logger  logger.Logger
}

func NewUploadController(service *UploadService, logger logger.Logger) *UploadController {
	return &UploadController{
		service: service,
		logger:  logger,
	}
}

func (c *UploadController) Routes(router *router.RouterGroup) {
	router.POST("/upload", c.Upload)
}

// Upload godoc
// @Summary Upload a listing photo
// @Tags App/Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} UploadResponse
// @Failure 413 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /upload [post]
func (c *UploadController) Upload(ctx *router.Context) error {
	file, err := ctx.FormFile("file")
	if errors.Is(err, router.ErrBodyTooLarge) {
		return ctx.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: "Request too large"})
	}
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Missing file"})
	}

	resp, err := c.service.Upload(ctx.Request.Context(), file)
	if err != nil {
		var tooLarge *storage.FileTooLargeError
		if errors.As(err, &tooLarge) {
			return ctx.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: storage.ImageTooLargeMessage(tooLarge.Size)})
		}
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Upload failed"})
	}
	return ctx.JSON(http.StatusOK, resp)
}
