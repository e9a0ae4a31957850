package controller

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bookworm_backend/internals/features/notifications/reminders/service"
	helper "bookworm_backend/internals/helpers"
)

type ReminderController struct {
	Reminders *service.ReminderService
}

func NewReminderController(reminders *service.ReminderService) *ReminderController {
	return &ReminderController{Reminders: reminders}
}

// Notify sends the debt reminder for a member.
func (ctrl *ReminderController) Notify(c *fiber.Ctx) error {
	memberID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid member id")
	}

	total, sent, err := ctrl.Reminders.NotifyDebtor(c.Context(), memberID)
	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Member not found")
	case errors.Is(err, service.ErrSendFailed):
		return helper.Error(c, fiber.StatusBadGateway, "Failed to send reminder email")
	case err != nil:
		return helper.Error(c, fiber.StatusInternalServerError, "Failed to send reminder")
	}

	if !sent {
		return helper.Success(c, "This member has no outstanding fines.", fiber.Map{"sent": false})
	}
	return helper.Success(c, fmt.Sprintf("Reminder email sent ($%.2f outstanding).", total), fiber.Map{
		"sent":       true,
		"total_debt": total,
	})
}
