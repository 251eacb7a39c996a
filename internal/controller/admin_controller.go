package controller

import (
	"strings"

	"pdf-rag-be/internal/pkg/serverutils"
	"pdf-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, admin fiber.Handler)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
	GetSystemStatus(ctx *fiber.Ctx) error
	ValidateConfig(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{
		service: service,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router, admin fiber.Handler) {
	h := r.Group("/admin")
	h.Use(admin)

	h.Get("/status", c.GetSystemStatus)
	h.Get("/validate-config", c.ValidateConfig)

	// System Logs
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 10)
	level := strings.ToUpper(ctx.Query("level"))

	logs, err := c.service.GetSystemLogs(ctx.Context(), page, limit, level, ctx.Query("module"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	// md5 of the log line, not a uuid
	l, err := c.service.GetLogDetail(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}

func (c *adminController) GetSystemStatus(ctx *fiber.Ctx) error {
	res, err := c.service.GetSystemStatus(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System status", res))
}

func (c *adminController) ValidateConfig(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Configuration check", c.service.ValidateConfig(ctx.Context())))
}
