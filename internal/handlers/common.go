// common.go
//
// Farm bookkeeping data service: crops, expenses, income and profit per account
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of farm-ledger.
// farm-ledger is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// farm-ledger is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with farm-ledger.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/farm-ledger/internal/middleware"
	"github.com/localnerve/farm-ledger/internal/models"
	"github.com/localnerve/farm-ledger/internal/types"
	"github.com/localnerve/farm-ledger/internal/utils"
)

// form reads request fields from a JSON object or an HTML form body
type form struct {
	c    *fiber.Ctx
	json map[string]types.FlexString
}

// parseForm prepares the request body for field lookups.
// JSON bodies may carry numbers or strings for any field.
func parseForm(c *fiber.Ctx) (*form, error) {
	f := &form{c: c}
	if !c.Is("json") {
		return f, nil
	}

	body := c.Body()
	if len(body) == 0 {
		f.json = map[string]types.FlexString{}
		return f, nil
	}
	if err := json.Unmarshal(body, &f.json); err != nil {
		return nil, types.NewValidationError("body", "must be a JSON object")
	}
	return f, nil
}

// Value returns the named field, or "" when absent
func (f *form) Value(key string) string {
	if f.json != nil {
		return f.json[key].String()
	}
	return f.c.FormValue(key)
}

// currentUser returns the user resolved by middleware.AuthUser
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(middleware.UserLocalsKey).(*models.User)
	if !ok || user == nil {
		return nil, types.ErrUnauthenticated
	}
	return user, nil
}

// respondError maps service errors to the JSON error envelope.
// Unrecognized errors are logged and reported as a 500 typed with the operation name.
func respondError(c *fiber.Ctx, err error, op string) error {
	var validationErr *types.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return utils.ErrorResponse(c, validationErr.Error(), fiber.StatusBadRequest, "data.validation.input")
	case errors.Is(err, types.ErrDuplicateEmail):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "auth.duplicate_email")
	case errors.Is(err, types.ErrAuthenticationFailed):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.failed")
	case errors.Is(err, types.ErrUnauthenticated):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.unauthenticated")
	case errors.Is(err, types.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	}

	log.Printf("[%s] %v", op, err)
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, op)
}

// ErrorHandler renders errors returned from middleware and handlers
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var customErr *types.CustomError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	default:
		log.Printf("[error] %s %s: %v", c.Method(), c.OriginalURL(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
