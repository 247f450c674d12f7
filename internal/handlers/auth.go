// auth.go
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
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/localnerve/farm-ledger/internal/metrics"
	"github.com/localnerve/farm-ledger/internal/middleware"
	"github.com/localnerve/farm-ledger/internal/services"
	"github.com/localnerve/farm-ledger/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	DB         *gorm.DB
	Sessions   *session.Store
	BcryptCost int
}

// Register handles POST /api/auth/register
// @Summary Register a user
// @Description Create an account. Emails are unique and compared case-insensitively.
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param body body handlers.RegisterRequest true "Account details"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, err, "register")
	}

	user, err := services.Register(c.UserContext(), h.DB, services.RegisterInput{
		Name:     f.Value("name"),
		Email:    f.Value("email"),
		Password: f.Value("password"),
	}, h.BcryptCost)
	if err != nil {
		return respondError(c, err, "register")
	}

	metrics.Registrations.Inc()
	log.Printf("[auth] registered user %d", user.ID)

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Verify credentials and start a session. The session cookie identifies the user on later requests.
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param body body handlers.LoginRequest true "Credentials"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, err, "login")
	}

	user, err := services.Authenticate(c.UserContext(), h.DB, f.Value("email"), f.Value("password"))
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		return respondError(c, err, "login")
	}

	sess, err := h.Sessions.Get(c)
	if err != nil {
		return respondError(c, err, "login")
	}
	// New id on privilege change
	if err := sess.Regenerate(); err != nil {
		return respondError(c, err, "login")
	}
	sess.Set(middleware.SessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		return respondError(c, err, "login")
	}

	metrics.Logins.WithLabelValues("success").Inc()

	return c.Status(fiber.StatusOK).JSON(user)
}

// Logout handles GET and POST /api/auth/logout
// @Summary Log out
// @Description End the current session. Succeeds without a session too.
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return respondError(c, err, "logout")
	}
	if err := sess.Destroy(); err != nil {
		return respondError(c, err, "logout")
	}

	return utils.MessageResponse(c, "Logged out")
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Description Return the logged in user
// @Tags Auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "me")
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// RegisterRequest documents the registration body
type RegisterRequest struct {
	Name     string `json:"name" example:"Al"`
	Email    string `json:"email" example:"al@x.com"`
	Password string `json:"password" example:"p"`
}

// LoginRequest documents the login body
type LoginRequest struct {
	Email    string `json:"email" example:"al@x.com"`
	Password string `json:"password" example:"p"`
}
