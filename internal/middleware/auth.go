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

package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/localnerve/farm-ledger/internal/services"
	"github.com/localnerve/farm-ledger/internal/types"
	"gorm.io/gorm"
)

// Context and session keys
const (
	UserLocalsKey  = "user"
	SessionUserKey = "user_id"
)

// AuthUser resolves the session's user and stores it in c.Locals(UserLocalsKey).
// Requests without a valid session are rejected before any handler runs.
func AuthUser(store *session.Store, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return unauthenticated("Session could not be read")
		}

		userID, _ := sess.Get(SessionUserKey).(uint64)
		user, err := services.CurrentUser(c.UserContext(), db, userID)
		if err != nil {
			if errors.Is(err, types.ErrUnauthenticated) {
				return unauthenticated("Login required")
			}
			return err
		}

		c.Locals(UserLocalsKey, user)
		return c.Next()
	}
}

func unauthenticated(message string) error {
	return &types.CustomError{
		Code:    fiber.StatusUnauthorized,
		Message: message,
		Type:    "auth.unauthenticated",
	}
}
