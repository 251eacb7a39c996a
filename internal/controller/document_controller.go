package controller

import (
	"io"
	"mime/multipart"
	"net/url"

	"pdf-rag-be/internal/dto"
	"pdf-rag-be/internal/pkg/serverutils"
	"pdf-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router, admin fiber.Handler)
	Upload(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	CollectionInfo(ctx *fiber.Ctx) error
	ClearCollection(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router, admin fiber.Handler) {
	h := r.Group("/documents/v1")
	h.Post("", c.Upload)
	h.Get("", c.GetAll)
	h.Post("search", c.Search)
	h.Get(":name", c.Show)
	h.Delete(":name", admin, c.Delete)

	col := r.Group("/collection/v1")
	col.Get("", c.CollectionInfo)
	col.Delete("", admin, c.ClearCollection)
}

// Upload accepts one or more PDFs in the multipart fields "files" or "file".
func (c *documentController) Upload(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart form with PDF files expected")
	}

	headers := append(form.File["files"], form.File["file"]...)
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no files uploaded")
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readFormFile(fh)
		if err != nil {
			return err
		}
		files = append(files, service.UploadFile{Filename: fh.Filename, Data: data})
	}

	res, err := c.documentService.Upload(ctx.Context(), files)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents processed", res))
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.documentService.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	name, err := nameParam(ctx)
	if err != nil {
		return err
	}
	res, err := c.documentService.Show(ctx.Context(), name)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document detail", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	name, err := nameParam(ctx)
	if err != nil {
		return err
	}
	res, err := c.documentService.Delete(ctx.Context(), name)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document deleted", res))
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *documentController) CollectionInfo(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Collection info", c.documentService.CollectionInfo(ctx.Context())))
}

// ClearCollection wipes the whole index and needs ?confirm=true.
func (c *documentController) ClearCollection(ctx *fiber.Ctx) error {
	if !ctx.QueryBool("confirm") {
		return fiber.NewError(fiber.StatusBadRequest, "clearing the collection deletes all documents; repeat with ?confirm=true")
	}
	if err := c.documentService.ClearCollection(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Vector store cleared", nil))
}

func nameParam(ctx *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(ctx.Params("name"))
	if err != nil || name == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid document name")
	}
	return name, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file "+fh.Filename)
	}
	defer f.Close()
	return io.ReadAll(f)
}
