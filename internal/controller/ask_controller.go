package controller

import (
	"ai-knowledge-router-be/internal/dto"
	"ai-knowledge-router-be/internal/pkg/serverutils"
	"ai-knowledge-router-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAskController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Ask(ctx *fiber.Ctx) error
	GetTurns(ctx *fiber.Ctx) error
}

type askController struct {
	service service.IAskService
}

func NewAskController(service service.IAskService) IAskController {
	return &askController{service: service}
}

func (c *askController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/conversations")
	h.Use(auth)
	h.Post("/ask", c.Ask)
	h.Get("/:id/turns", c.GetTurns)
}

func (c *askController) Ask(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	curated, _ := ctx.Locals(serverutils.LocalCuratedMode).(bool)

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBadRequestError("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.UserContext(), userId, curated, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *askController) GetTurns(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("Invalid conversation id")
	}

	res, err := c.service.GetTurns(ctx.UserContext(), userId, conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get turns", res))
}

func userIdFrom(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals(serverutils.LocalUserID).(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user")
	}
	return userId, nil
}
