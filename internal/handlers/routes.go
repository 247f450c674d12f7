// routes.go
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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/localnerve/farm-ledger/internal/config"
	"github.com/localnerve/farm-ledger/internal/middleware"
	"gorm.io/gorm"
)

// Routes mounts the farm API on router, normally the /api group
func Routes(router fiber.Router, cfg *config.Config, db *gorm.DB, store *session.Store) {
	authHandler := &AuthHandler{DB: db, Sessions: store, BcryptCost: cfg.BcryptCost}
	recordHandler := &RecordHandler{DB: db}
	reportHandler := &ReportHandler{DB: db}
	healthHandler := &HealthHandler{DB: db, Config: cfg}

	requireUser := middleware.AuthUser(store, db)

	// Public routes
	router.Get("/health", healthHandler.Health)

	auth := router.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/logout", authHandler.Logout)
	auth.Get("/me", requireUser, authHandler.Me)

	// Per-user records
	router.Get("/crops", requireUser, recordHandler.ListCrops)
	router.Post("/crops", requireUser, recordHandler.CreateCrop)
	router.Get("/crops/:id", requireUser, recordHandler.GetCrop)
	router.Get("/expenses", requireUser, recordHandler.ListExpenses)
	router.Post("/expenses", requireUser, recordHandler.CreateExpense)
	router.Get("/income", requireUser, recordHandler.ListIncome)
	router.Post("/income", requireUser, recordHandler.CreateIncome)
	router.Get("/dashboard", requireUser, reportHandler.Dashboard)
}

// NotFound is the catch-all 404 handler
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "data.not_found",
	})
}
