// auth_service.go
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

package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/localnerve/farm-ledger/internal/models"
	"github.com/localnerve/farm-ledger/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcrypt ignores input past this length, so longer passwords are rejected
const maxPasswordBytes = 72

// RegisterInput is the registration form
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// dummyHash is compared against when the email is unknown so both failure paths cost one bcrypt run
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("farm-ledger-no-such-user"), bcrypt.DefaultCost)
	return hash
})

// NormalizeEmail returns the canonical form used as the login key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt hash of the password
func Register(ctx context.Context, db *gorm.DB, in RegisterInput, cost int) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)

	if name == "" {
		return nil, types.NewValidationError("name", "is required")
	}
	if email == "" {
		return nil, types.NewValidationError("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return nil, types.NewValidationError("email", "must be an email address")
	}
	if in.Password == "" {
		return nil, types.NewValidationError("password", "is required")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, types.NewValidationError("password", "must be at most 72 bytes")
	}

	var count int64
	if err := quiet(db).WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, types.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

// Authenticate returns the user whose email and password match.
// Any mismatch yields ErrAuthenticationFailed without saying which part was wrong.
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	err := quiet(db).WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, types.ErrAuthenticationFailed
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrAuthenticationFailed
	}

	return &user, nil
}

// CurrentUser resolves the user a session refers to
func CurrentUser(ctx context.Context, db *gorm.DB, userID uint64) (*models.User, error) {
	if userID == 0 {
		return nil, types.ErrUnauthenticated
	}

	var user models.User
	err := quiet(db).WithContext(ctx).Take(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
