package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"isp-system/config"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/services"
	"isp-system/pkg/api"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
	"isp-system/pkg/validation"
)

type ComplaintService interface {
	GetComplaints(ctx context.Context, filter types.Filter) ([]entities.Complaint, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error)
	FindByID(ctx context.Context, id uint64) (*entities.Complaint, error)
	Create(ctx context.Context, payload dto.CreateComplaintDTO) (*entities.Complaint, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateComplaintDTO, fields utils.Fields) (*entities.Complaint, error)
	Delete(ctx context.Context, id uint64) error
	AddAttachment(ctx context.Context, complaintID uint64, file services.Upload) (*entities.ComplaintAttachment, error)
	GetAttachments(ctx context.Context, complaintID uint64) ([]entities.ComplaintAttachment, error)
	Export(ctx context.Context, filter types.Filter, w io.Writer) error
}

type ComplaintController struct {
	service ComplaintService
	logger  *zap.Logger
}

func NewComplaintController(service ComplaintService, logger *zap.Logger) *ComplaintController {
	return &ComplaintController{service: service, logger: logger}
}

func (c *ComplaintController) GetAll(ctx echo.Context) error {
	return respondList(ctx, c.logger, "Список жалоб получен", c.service.GetComplaints)
}

func (c *ComplaintController) GetStats(ctx echo.Context) error {
	return respondStats(ctx, c.logger, c.service.GetStats)
}

func (c *ComplaintController) GetByID(ctx echo.Context) error {
	return respondByID(ctx, c.logger, "Жалоба найдена", c.service.FindByID)
}

func (c *ComplaintController) Create(ctx echo.Context) error {
	return respondCreate(ctx, c.logger, "Жалоба зарегистрирована", c.service.Create)
}

func (c *ComplaintController) Update(ctx echo.Context) error {
	return respondPatch(ctx, c.logger, "Жалоба обновлена", c.service.Update)
}

func (c *ComplaintController) Delete(ctx echo.Context) error {
	return respondDelete(ctx, c.logger, "Жалоба удалена", c.service.Delete)
}

func (c *ComplaintController) Export(ctx echo.Context) error {
	return respondExport(ctx, c.logger, "complaints", c.service.Export)
}

func (c *ComplaintController) GetAttachments(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.service.GetAttachments(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Вложения получены", list, uint64(len(list)), 1, len(list), false)
}

// AddAttachment принимает multipart-поле "file".
func (c *ComplaintController) AddAttachment(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, badRequest("Файл не передан", err), c.logger)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, badRequest("Не удалось открыть файл", err), c.logger)
	}
	defer src.Close()

	if err := validation.ValidateFile(fileHeader, src, config.UploadComplaintAttachment); err != nil {
		return utils.ErrorResponse(ctx, badRequest(err.Error(), err), c.logger)
	}

	attachment, err := c.service.AddAttachment(ctx.Request().Context(), id, services.Upload{
		Reader:   src,
		FileName: fileHeader.Filename,
		FileType: fileHeader.Header.Get(echo.HeaderContentType),
		Size:     fileHeader.Size,
	})
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Файл прикреплён", attachment)
}
