package helper

import (
	"github.com/gofiber/fiber/v2"

	"bookworm_backend/internals/constants"
)

// Actor is the requesting identity as supplied by the external identity
// collaborator: a contact-address identity plus a role flag. Workflow
// services receive it explicitly instead of reading session state.
type Actor struct {
	Email string
	Role  string
}

func (a Actor) IsLibrarian() bool {
	return a.Role == constants.RoleLibrarian
}

// ActorFromCtx builds the actor from the locals set by the JWT middleware.
func ActorFromCtx(c *fiber.Ctx) Actor {
	actor := Actor{}
	if v, ok := c.Locals("user_email").(string); ok {
		actor.Email = v
	}
	if v, ok := c.Locals("user_role").(string); ok {
		actor.Role = v
	}
	return actor
}
