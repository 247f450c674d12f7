// db.go
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

package testutil

import (
	"context"
	"testing"

	"github.com/localnerve/farm-ledger/internal/config"
	"github.com/localnerve/farm-ledger/internal/database"
	"github.com/localnerve/farm-ledger/internal/models"
	"github.com/localnerve/farm-ledger/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestConfig returns a configuration for an in-memory CGO-free SQLite database
func TestConfig() *config.Config {
	return &config.Config{
		Port:              "3000",
		DBType:            "sqlite-pure",
		DBDatabase:        "file::memory:",
		DBConnectionLimit: 1,
		DBMigrate:         "auto",
		DBLogLevel:        "silent",
		SessionCookieName: "farm_session",
		SessionExpiration: config.DefaultSessionExpiration,
		BcryptCost:        bcrypt.MinCost,
	}
}

// NewTestDB opens a migrated in-memory database that lives for the duration of the test.
// One connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return OpenTestDB(t, TestConfig())
}

// OpenTestDB opens and migrates the database described by cfg
func OpenTestDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})

	if err := database.Migrate(cfg, db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateTestUser registers a user with the minimum bcrypt cost
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, password string) *models.User {
	t.Helper()
	user, err := services.Register(context.Background(), db, services.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	}, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

// CreateTestCrop stores a crop for userID
func CreateTestCrop(t *testing.T, db *gorm.DB, userID uint64, name, area string) *models.Crop {
	t.Helper()
	crop, err := services.CreateCrop(context.Background(), db, userID, services.CropInput{
		CropName:    name,
		Area:        area,
		Season:      "Rabi",
		PlantedDate: "2024-11-01",
	})
	if err != nil {
		t.Fatalf("Failed to create crop %s: %v", name, err)
	}
	return crop
}

// CreateTestExpense stores an expense. A zero cropID makes it a general expense.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, cropID uint64, amount string) *models.Expense {
	t.Helper()
	in := services.ExpenseInput{
		ExpenseType: models.ExpenseGeneral,
		Category:    "Misc",
		Description: "test expense",
		Amount:      amount,
		Date:        "2024-11-02",
	}
	if cropID != 0 {
		in.ExpenseType = models.ExpenseCrop
		in.CropID = services.FormatID(cropID)
	}

	expense, err := services.CreateExpense(context.Background(), db, userID, in)
	if err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}
	return expense
}

// CreateTestIncome stores an income record against cropID
func CreateTestIncome(t *testing.T, db *gorm.DB, userID, cropID uint64, quantity, price string) *models.Income {
	t.Helper()
	income, err := services.CreateIncome(context.Background(), db, userID, services.IncomeInput{
		CropID:   services.FormatID(cropID),
		Quantity: quantity,
		Price:    price,
		Details:  "test sale",
		Date:     "2025-04-10",
	})
	if err != nil {
		t.Fatalf("Failed to create income: %v", err)
	}
	return income
}
