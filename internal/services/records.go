// records.go
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
	"strconv"
	"strings"

	"github.com/localnerve/farm-ledger/internal/models"
	"github.com/localnerve/farm-ledger/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// maxFractionDigits bounds numeric input so quantity * price fits total_amount exactly
const maxFractionDigits = 4

// CropInput is the crop form
type CropInput struct {
	CropName    string
	Area        string
	Season      string
	PlantedDate string
}

// ExpenseInput is the expense form. CropID is ignored for general expenses.
type ExpenseInput struct {
	ExpenseType string
	Category    string
	Description string
	Amount      string
	Date        string
	CropID      string
}

// IncomeInput is the income form. The total is derived, never supplied.
type IncomeInput struct {
	CropID   string
	Quantity string
	Price    string
	Details  string
	Date     string
}

// CreateCrop stores a crop for userID
func CreateCrop(ctx context.Context, db *gorm.DB, userID uint64, in CropInput) (*models.Crop, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}

	name, err := requireText("crop_name", in.CropName)
	if err != nil {
		return nil, err
	}
	area, err := parseDecimal("area", in.Area)
	if err != nil {
		return nil, err
	}

	crop := &models.Crop{
		UserID:      userID,
		CropName:    name,
		Area:        models.NewDecimal(area),
		Season:      strings.TrimSpace(in.Season),
		PlantedDate: strings.TrimSpace(in.PlantedDate),
	}
	if err := db.WithContext(ctx).Create(crop).Error; err != nil {
		return nil, err
	}
	return crop, nil
}

// CreateExpense stores an expense for userID. A crop expense must name one of the user's crops.
func CreateExpense(ctx context.Context, db *gorm.DB, userID uint64, in ExpenseInput) (*models.Expense, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}

	expenseType := strings.ToLower(strings.TrimSpace(in.ExpenseType))
	if expenseType != models.ExpenseGeneral && expenseType != models.ExpenseCrop {
		return nil, types.NewValidationError("expense_type", "must be general or crop")
	}
	category, err := requireText("category", in.Category)
	if err != nil {
		return nil, err
	}
	amount, err := parseDecimal("amount", in.Amount)
	if err != nil {
		return nil, err
	}

	var cropID *uint64
	if expenseType == models.ExpenseCrop {
		if strings.TrimSpace(in.CropID) == "" {
			return nil, types.NewValidationError("crop_id", "is required for crop expenses")
		}
		if cropID, err = ownedCropID(ctx, db, userID, in.CropID); err != nil {
			return nil, err
		}
	}

	expense := &models.Expense{
		UserID:      userID,
		ExpenseType: expenseType,
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		Amount:      models.NewDecimal(amount),
		Date:        strings.TrimSpace(in.Date),
		CropID:      cropID,
	}
	if err := db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

// CreateIncome stores an income for userID with TotalAmount = Quantity * PricePerUnit
func CreateIncome(ctx context.Context, db *gorm.DB, userID uint64, in IncomeInput) (*models.Income, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}

	quantity, err := parseDecimal("quantity", in.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := parseDecimal("price", in.Price)
	if err != nil {
		return nil, err
	}

	var cropID *uint64
	if strings.TrimSpace(in.CropID) != "" {
		if cropID, err = ownedCropID(ctx, db, userID, in.CropID); err != nil {
			return nil, err
		}
	}

	income := &models.Income{
		UserID:       userID,
		CropID:       cropID,
		Quantity:     models.NewDecimal(quantity),
		PricePerUnit: models.NewDecimal(price),
		TotalAmount:  models.NewDecimal(quantity.Mul(price)),
		Details:      strings.TrimSpace(in.Details),
		Date:         strings.TrimSpace(in.Date),
	}
	if err := db.WithContext(ctx).Create(income).Error; err != nil {
		return nil, err
	}
	return income, nil
}

// ListCrops returns the user's crops, newest first
func ListCrops(ctx context.Context, db *gorm.DB, userID uint64) ([]models.Crop, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}
	crops := []models.Crop{}
	err := quiet(db).WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&crops).Error
	return crops, err
}

// ListExpenses returns the user's expenses, newest first
func ListExpenses(ctx context.Context, db *gorm.DB, userID uint64) ([]models.Expense, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}
	expenses := []models.Expense{}
	err := quiet(db).WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&expenses).Error
	return expenses, err
}

// ListIncomes returns the user's incomes, newest first
func ListIncomes(ctx context.Context, db *gorm.DB, userID uint64) ([]models.Income, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}
	incomes := []models.Income{}
	err := quiet(db).WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&incomes).Error
	return incomes, err
}

// GetCrop returns one of the user's crops, or ErrNotFound
func GetCrop(ctx context.Context, db *gorm.DB, userID, cropID uint64) (*models.Crop, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}

	var crop models.Crop
	err := quiet(db).WithContext(ctx).Where("id = ? AND user_id = ?", cropID, userID).Take(&crop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &crop, nil
}

// ExpensesForCrop returns the user's expenses attached to cropID, newest first
func ExpensesForCrop(ctx context.Context, db *gorm.DB, userID, cropID uint64) ([]models.Expense, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}
	expenses := []models.Expense{}
	err := quiet(db).WithContext(ctx).
		Where("user_id = ? AND crop_id = ?", userID, cropID).
		Order("id DESC").
		Find(&expenses).Error
	return expenses, err
}

// IncomesForCrop returns the user's incomes attached to cropID, newest first
func IncomesForCrop(ctx context.Context, db *gorm.DB, userID, cropID uint64) ([]models.Income, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}
	incomes := []models.Income{}
	err := quiet(db).WithContext(ctx).
		Where("user_id = ? AND crop_id = ?", userID, cropID).
		Order("id DESC").
		Find(&incomes).Error
	return incomes, err
}

// ParseID parses a record identifier from text
func ParseID(field, raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, types.NewValidationError(field, "must be a positive integer")
	}
	return id, nil
}

// FormatID renders an id the way ParseID reads it
func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ownedCropID parses raw and checks the crop belongs to userID
func ownedCropID(ctx context.Context, db *gorm.DB, userID uint64, raw string) (*uint64, error) {
	id, err := ParseID("crop_id", raw)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := quiet(db).WithContext(ctx).Model(&models.Crop{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, types.ErrNotFound
	}
	return &id, nil
}

func requireOwner(userID uint64) error {
	if userID == 0 {
		return types.ErrUnauthenticated
	}
	return nil
}

func requireText(field, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", types.NewValidationError(field, "is required")
	}
	return value, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, types.NewValidationError(field, "is required")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, types.NewValidationError(field, "must be a number")
	}
	if !d.Equal(d.Truncate(maxFractionDigits)) {
		return decimal.Zero, types.NewValidationError(field, "must have at most 4 decimal places")
	}
	return d, nil
}

// quiet silences SQL logging for read paths
func quiet(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}
