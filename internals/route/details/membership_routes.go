package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	memberController "bookworm_backend/internals/features/membership/members/controller"
	reminderController "bookworm_backend/internals/features/notifications/reminders/controller"
	reminderService "bookworm_backend/internals/features/notifications/reminders/service"
)

// MembershipLibrarianRoutes mounts member management and the debt reminder.
func MembershipLibrarianRoutes(r fiber.Router, db *gorm.DB, mailer reminderService.MailSender, baseURL string) {
	members := memberController.NewMemberController(db)
	reminders := reminderController.NewReminderController(
		reminderService.NewReminderService(db, mailer, baseURL),
	)

	r.Post("/members", members.Register)
	r.Get("/members", members.List)
	r.Get("/members/:id", members.Detail)
	r.Post("/members/:id/notify", reminders.Notify)
}
