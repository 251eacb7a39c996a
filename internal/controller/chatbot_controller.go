package controller

import (
	"pdf-rag-be/internal/dto"
	"pdf-rag-be/internal/pkg/serverutils"
	"pdf-rag-be/internal/repository/contract"
	"pdf-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router, admin fiber.Handler)
	SendChat(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	ClearChatHistory(ctx *fiber.Ctx) error
	GetBackends(ctx *fiber.Ctx) error
	SetDefaultBackend(ctx *fiber.Ctx) error
	GetModels(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router, admin fiber.Handler) {
	h := r.Group("/chatbot/v1")
	h.Post("send-chat", c.SendChat)
	h.Get("history", c.GetChatHistory)
	h.Delete("history", admin, c.ClearChatHistory)
	h.Get("backends", c.GetBackends)
	h.Put("backends/default", c.SetDefaultBackend)
	h.Get("backends/:name/models", c.GetModels)
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.SendChat(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

// GetChatHistory takes ?limit=N (default 10, 0 for everything).
func (c *chatbotController) GetChatHistory(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", contract.DefaultRecentHistoryLimit)
	res, err := c.chatbotService.GetChatHistory(ctx.Context(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}

func (c *chatbotController) ClearChatHistory(ctx *fiber.Ctx) error {
	if err := c.chatbotService.ClearChatHistory(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history cleared", nil))
}

func (c *chatbotController) GetBackends(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Language models", c.chatbotService.GetBackends(ctx.Context())))
}

func (c *chatbotController) SetDefaultBackend(ctx *fiber.Ctx) error {
	var req dto.SetDefaultBackendRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.SetDefaultBackend(ctx.Context(), req.Backend)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Default language model updated", res))
}

func (c *chatbotController) GetModels(ctx *fiber.Ctx) error {
	res, err := c.chatbotService.GetModels(ctx.Context(), ctx.Params("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Models", res))
}
