package handlers

import "github.com/gofiber/fiber/v2"

// parseLimitOffset читает limit/offset из query с защитой от мусора.
// Лимит капится, чтобы один запрос не утаскивал всю историю разом.
func parseLimitOffset(c *fiber.Ctx, defLimit int) (limit, offset int) {
	const maxLimit = 200
	limit = c.QueryInt("limit", defLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defLimit
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
