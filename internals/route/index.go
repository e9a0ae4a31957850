package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bookworm_backend/internals/configs"
	"bookworm_backend/internals/constants"
	fineService "bookworm_backend/internals/features/lending/fines/service"
	reminderService "bookworm_backend/internals/features/notifications/reminders/service"
	"bookworm_backend/internals/middlewares/auth"
	routeDetails "bookworm_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== SHARED COLLABORATORS =====================
	settlement := fineService.NewSettlementService(
		db,
		configs.MidtransServerKey,
		configs.MidtransUseProd,
		configs.PublicBaseURL,
	)
	mailer := reminderService.NewSMTPSender(
		configs.SMTPHost,
		configs.SMTPPort,
		configs.SMTPUser,
		configs.SMTPPassword,
		configs.SMTPFrom,
	)

	// ===================== GROUPS =====================

	// PUBLIC: gateway webhooks, no session
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	// USER: any authenticated identity
	log.Println("[INFO] Setting up USER group...")
	user := app.Group("/api/u",
		auth.AuthJWT(configs.JWTSecret),
	)

	// LIBRARIAN: staff only
	log.Println("[INFO] Setting up LIBRARIAN group (Auth + RoleCheck)...")
	librarian := app.Group("/api/a",
		auth.AuthJWT(configs.JWTSecret),
		auth.RequireRoles(constants.RoleLibrarian),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Home routes...")
	routeDetails.HomeUserRoutes(user, db)

	log.Println("[INFO] Mounting Catalog routes...")
	routeDetails.CatalogUserRoutes(user, db)
	routeDetails.CatalogLibrarianRoutes(librarian, db)

	log.Println("[INFO] Mounting Membership routes...")
	routeDetails.MembershipLibrarianRoutes(librarian, db, mailer, configs.PublicBaseURL)

	log.Println("[INFO] Mounting Lending routes...")
	routeDetails.LendingLibrarianRoutes(librarian, db)
	routeDetails.LendingUserRoutes(user, db, settlement)
	routeDetails.LendingPublicRoutes(public, db, settlement)
}
