// records_test.go
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

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/localnerve/farm-ledger/internal/models"
	"github.com/localnerve/farm-ledger/internal/services"
	"github.com/localnerve/farm-ledger/internal/testutil"
	"github.com/localnerve/farm-ledger/internal/types"
)

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var validationErr *types.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError on %s, got %v", field, err)
	}
	if validationErr.Field != field {
		t.Errorf("Expected field %s, got %s", field, validationErr.Field)
	}
}

func TestCreateCrop(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")

	crop, err := services.CreateCrop(ctx, db, user.ID, services.CropInput{
		CropName:    " Wheat ",
		Area:        "2.5",
		Season:      "Rabi",
		PlantedDate: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("CreateCrop failed: %v", err)
	}

	stored, err := services.GetCrop(ctx, db, user.ID, crop.ID)
	if err != nil {
		t.Fatalf("GetCrop failed: %v", err)
	}
	if stored.CropName != "Wheat" {
		t.Errorf("Expected crop name Wheat, got %q", stored.CropName)
	}
	testutil.AssertDecimal(t, "area", stored.Area.Decimal, "2.5")
	if stored.Season != "Rabi" || stored.PlantedDate != "2024-01-01" {
		t.Errorf("Unexpected season/date: %q %q", stored.Season, stored.PlantedDate)
	}
	if stored.UserID != user.ID {
		t.Errorf("Expected owner %d, got %d", user.ID, stored.UserID)
	}
}

func TestCreateCropValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")

	tests := []struct {
		name  string
		input services.CropInput
		field string
	}{
		{"missing name", services.CropInput{Area: "1"}, "crop_name"},
		{"missing area", services.CropInput{CropName: "Wheat"}, "area"},
		{"non-numeric area", services.CropInput{CropName: "Wheat", Area: "two"}, "area"},
		{"too precise area", services.CropInput{CropName: "Wheat", Area: "1.23456"}, "area"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.CreateCrop(ctx, db, user.ID, tt.input)
			assertValidationField(t, err, tt.field)
		})
	}

	if _, err := services.CreateCrop(ctx, db, 0, services.CropInput{CropName: "Wheat", Area: "1"}); !errors.Is(err, types.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated without a user, got %v", err)
	}
}

func TestCreateExpenseGeneralDropsCrop(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")
	crop := testutil.CreateTestCrop(t, db, user.ID, "Wheat", "2.5")

	expense, err := services.CreateExpense(ctx, db, user.ID, services.ExpenseInput{
		ExpenseType: "general",
		Category:    "Fuel",
		Amount:      "40",
		Date:        "2024-02-01",
		CropID:      services.FormatID(crop.ID),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	var stored models.Expense
	if err := db.First(&stored, expense.ID).Error; err != nil {
		t.Fatalf("Failed to reload expense: %v", err)
	}
	if stored.CropID != nil {
		t.Errorf("Expected general expense to have no crop, got %d", *stored.CropID)
	}
	if stored.ExpenseType != models.ExpenseGeneral {
		t.Errorf("Expected expense type general, got %s", stored.ExpenseType)
	}
}

func TestCreateExpenseCrop(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	al := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")
	bo := testutil.CreateTestUser(t, db, "Bo", "b@x.com", "pw")
	wheat := testutil.CreateTestCrop(t, db, al.ID, "Wheat", "2.5")
	rice := testutil.CreateTestCrop(t, db, bo.ID, "Rice", "1")

	expense, err := services.CreateExpense(ctx, db, al.ID, services.ExpenseInput{
		ExpenseType: "Crop",
		Category:    "seed",
		Description: "seed bags",
		Amount:      "100",
		Date:        "2024-01-02",
		CropID:      services.FormatID(wheat.ID),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.CropID == nil || *expense.CropID != wheat.ID {
		t.Errorf("Expected expense on crop %d, got %v", wheat.ID, expense.CropID)
	}
	if expense.ExpenseType != models.ExpenseCrop {
		t.Errorf("Expected normalized type crop, got %s", expense.ExpenseType)
	}

	// Another user's crop is invisible
	_, err = services.CreateExpense(ctx, db, al.ID, services.ExpenseInput{
		ExpenseType: "crop",
		Category:    "seed",
		Amount:      "5",
		CropID:      services.FormatID(rice.ID),
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user's crop, got %v", err)
	}

	_, err = services.CreateExpense(ctx, db, al.ID, services.ExpenseInput{
		ExpenseType: "crop",
		Category:    "seed",
		Amount:      "5",
		CropID:      "9999",
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing crop, got %v", err)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")

	tests := []struct {
		name  string
		input services.ExpenseInput
		field string
	}{
		{"unknown type", services.ExpenseInput{ExpenseType: "misc", Category: "x", Amount: "1"}, "expense_type"},
		{"missing category", services.ExpenseInput{ExpenseType: "general", Amount: "1"}, "category"},
		{"missing amount", services.ExpenseInput{ExpenseType: "general", Category: "x"}, "amount"},
		{"bad amount", services.ExpenseInput{ExpenseType: "general", Category: "x", Amount: "ten"}, "amount"},
		{"crop without crop_id", services.ExpenseInput{ExpenseType: "crop", Category: "x", Amount: "1"}, "crop_id"},
		{"malformed crop_id", services.ExpenseInput{ExpenseType: "crop", Category: "x", Amount: "1", CropID: "abc"}, "crop_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.CreateExpense(ctx, db, user.ID, tt.input)
			assertValidationField(t, err, tt.field)
		})
	}
}

func TestCreateIncomeTotal(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")
	crop := testutil.CreateTestCrop(t, db, user.ID, "Wheat", "2.5")

	tests := []struct {
		quantity string
		price    string
		total    string
	}{
		{"10", "5", "50"},
		{"20", "10", "200"},
		{"2.5", "4.25", "10.625"},
		{"0.5", "0.25", "0.125"},
		{"0.1", "0.3", "0.03"},
		{"123456789012.3456", "7.0001", "864209868765.32043456"},
	}
	for _, tt := range tests {
		income, err := services.CreateIncome(ctx, db, user.ID, services.IncomeInput{
			CropID:   services.FormatID(crop.ID),
			Quantity: tt.quantity,
			Price:    tt.price,
		})
		if err != nil {
			t.Fatalf("CreateIncome(%s x %s) failed: %v", tt.quantity, tt.price, err)
		}
		testutil.AssertDecimal(t, "total", income.TotalAmount.Decimal, tt.total)

		var stored models.Income
		if err := db.First(&stored, income.ID).Error; err != nil {
			t.Fatalf("Failed to reload income: %v", err)
		}
		testutil.AssertDecimal(t, "stored total", stored.TotalAmount.Decimal, tt.total)
	}
}

func TestCreateIncomeCropOptional(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	al := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")
	bo := testutil.CreateTestUser(t, db, "Bo", "b@x.com", "pw")
	rice := testutil.CreateTestCrop(t, db, bo.ID, "Rice", "1")

	income, err := services.CreateIncome(ctx, db, al.ID, services.IncomeInput{
		Quantity: "1",
		Price:    "30",
		Details:  "hay",
	})
	if err != nil {
		t.Fatalf("CreateIncome without crop failed: %v", err)
	}
	if income.CropID != nil {
		t.Errorf("Expected no crop, got %d", *income.CropID)
	}

	_, err = services.CreateIncome(ctx, db, al.ID, services.IncomeInput{
		CropID:   services.FormatID(rice.ID),
		Quantity: "1",
		Price:    "1",
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user's crop, got %v", err)
	}

	_, err = services.CreateIncome(ctx, db, al.ID, services.IncomeInput{Quantity: "x", Price: "1"})
	assertValidationField(t, err, "quantity")
	_, err = services.CreateIncome(ctx, db, al.ID, services.IncomeInput{Quantity: "1"})
	assertValidationField(t, err, "price")
}

func TestListsNewestFirstAndIsolated(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	al := testutil.CreateTestUser(t, db, "Al", "a@x.com", "pw")
	bo := testutil.CreateTestUser(t, db, "Bo", "b@x.com", "pw")

	// Empty lists are empty, not nil
	crops, err := services.ListCrops(ctx, db, al.ID)
	if err != nil {
		t.Fatalf("ListCrops failed: %v", err)
	}
	if crops == nil || len(crops) != 0 {
		t.Errorf("Expected empty non-nil crop list, got %v", crops)
	}

	wheat := testutil.CreateTestCrop(t, db, al.ID, "Wheat", "2")
	corn := testutil.CreateTestCrop(t, db, al.ID, "Corn", "3")
	testutil.CreateTestCrop(t, db, bo.ID, "Rice", "1")

	first := testutil.CreateTestExpense(t, db, al.ID, wheat.ID, "10")
	second := testutil.CreateTestExpense(t, db, al.ID, 0, "20")
	testutil.CreateTestExpense(t, db, bo.ID, 0, "99")

	older := testutil.CreateTestIncome(t, db, al.ID, wheat.ID, "1", "5")
	newer := testutil.CreateTestIncome(t, db, al.ID, corn.ID, "2", "5")

	crops, _ = services.ListCrops(ctx, db, al.ID)
	if len(crops) != 2 || crops[0].ID != corn.ID || crops[1].ID != wheat.ID {
		t.Errorf("Expected [Corn, Wheat], got %+v", crops)
	}

	expenses, err := services.ListExpenses(ctx, db, al.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(expenses) != 2 || expenses[0].ID != second.ID || expenses[1].ID != first.ID {
		t.Errorf("Expected expenses newest first, got %+v", expenses)
	}

	incomes, err := services.ListIncomes(ctx, db, al.ID)
	if err != nil {
		t.Fatalf("ListIncomes failed: %v", err)
	}
	if len(incomes) != 2 || incomes[0].ID != newer.ID || incomes[1].ID != older.ID {
		t.Errorf("Expected incomes newest first, got %+v", incomes)
	}

	boIncomes, _ := services.ListIncomes(ctx, db, bo.ID)
	if len(boIncomes) != 0 {
		t.Errorf("Expected Bo to see no incomes, got %d", len(boIncomes))
	}
	boCrops, _ := services.ListCrops(ctx, db, bo.ID)
	if len(boCrops) != 1 || boCrops[0].CropName != "Rice" {
		t.Errorf("Expected Bo to see only Rice, got %+v", boCrops)
	}

	if _, err := services.GetCrop(ctx, db, bo.ID, wheat.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound reading another user's crop, got %v", err)
	}
	if _, err := services.ListExpenses(ctx, db, 0); !errors.Is(err, types.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated without a user, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	if id, err := services.ParseID("id", " 42 "); err != nil || id != 42 {
		t.Errorf("Expected 42, got %d (%v)", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "1.5", "abc"} {
		if _, err := services.ParseID("id", raw); err == nil {
			t.Errorf("Expected error parsing %q", raw)
		}
	}
	if services.FormatID(7) != "7" {
		t.Errorf("Expected FormatID(7) to be 7")
	}
}
