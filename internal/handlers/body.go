package handlers

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// decodeBody decodes a JSON request body keeping numbers as json.Number, so
// amounts reach money.Parse with their exact decimal text.
func decodeBody(c *fiber.Ctx, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	return dec.Decode(dst)
}
