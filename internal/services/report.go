// report.go
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

	"github.com/localnerve/farm-ledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// CropTotals is one crop's share of the account's income and expense
type CropTotals struct {
	CropID  uint64          `json:"crop_id"`
	Name    string          `json:"name"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Dashboard is the account-wide profit and loss view
type Dashboard struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Profit       decimal.Decimal `json:"profit"`
	PerCrop      []CropTotals    `json:"per_crop"`
}

// CropSummary is a single crop with the records attached to it
type CropSummary struct {
	Crop     models.Crop      `json:"crop"`
	Expenses []models.Expense `json:"expenses"`
	Incomes  []models.Income  `json:"incomes"`
	Income   decimal.Decimal  `json:"income"`
	Expense  decimal.Decimal  `json:"expense"`
	Profit   decimal.Decimal  `json:"profit"`
}

// ledger describes a summable table
type ledger struct {
	model  interface{}
	column string
	index  string
}

var (
	incomeLedger  = ledger{&models.Income{}, "total_amount", "idx_incomes_user_crop"}
	expenseLedger = ledger{&models.Expense{}, "amount", "idx_expenses_user_crop"}
)

// TotalIncome sums total_amount over all of the user's incomes
func TotalIncome(ctx context.Context, db *gorm.DB, userID uint64) (decimal.Decimal, error) {
	if err := requireOwner(userID); err != nil {
		return decimal.Zero, err
	}
	return sum(ctx, db, incomeLedger, userID, nil)
}

// TotalExpense sums amount over all of the user's expenses
func TotalExpense(ctx context.Context, db *gorm.DB, userID uint64) (decimal.Decimal, error) {
	if err := requireOwner(userID); err != nil {
		return decimal.Zero, err
	}
	return sum(ctx, db, expenseLedger, userID, nil)
}

// Profit is TotalIncome - TotalExpense
func Profit(ctx context.Context, db *gorm.DB, userID uint64) (decimal.Decimal, error) {
	income, err := TotalIncome(ctx, db, userID)
	if err != nil {
		return decimal.Zero, err
	}
	expense, err := TotalExpense(ctx, db, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return income.Sub(expense), nil
}

// PerCropBreakdown returns income and expense per crop, for every crop of the user in ascending id order.
// Only rows owned by the user count toward a crop.
func PerCropBreakdown(ctx context.Context, db *gorm.DB, userID uint64) ([]CropTotals, error) {
	if err := requireOwner(userID); err != nil {
		return nil, err
	}

	crops := []models.Crop{}
	if err := quiet(db).WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&crops).Error; err != nil {
		return nil, err
	}
	if len(crops) == 0 {
		return []CropTotals{}, nil
	}

	incomeByCrop, err := sumByCrop(ctx, db, incomeLedger, userID)
	if err != nil {
		return nil, err
	}
	expenseByCrop, err := sumByCrop(ctx, db, expenseLedger, userID)
	if err != nil {
		return nil, err
	}

	totals := make([]CropTotals, 0, len(crops))
	for _, crop := range crops {
		totals = append(totals, CropTotals{
			CropID:  crop.ID,
			Name:    crop.CropName,
			Income:  incomeByCrop[crop.ID],
			Expense: expenseByCrop[crop.ID],
		})
	}
	return totals, nil
}

// BuildDashboard assembles totals, profit and the per-crop breakdown for the user
func BuildDashboard(ctx context.Context, db *gorm.DB, userID uint64) (*Dashboard, error) {
	income, err := TotalIncome(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	expense, err := TotalExpense(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	perCrop, err := PerCropBreakdown(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalIncome:  income,
		TotalExpense: expense,
		Profit:       income.Sub(expense),
		PerCrop:      perCrop,
	}, nil
}

// BuildCropSummary loads one of the user's crops with its expenses, incomes and sums
func BuildCropSummary(ctx context.Context, db *gorm.DB, userID, cropID uint64) (*CropSummary, error) {
	crop, err := GetCrop(ctx, db, userID, cropID)
	if err != nil {
		return nil, err
	}

	expenses, err := ExpensesForCrop(ctx, db, userID, cropID)
	if err != nil {
		return nil, err
	}
	incomes, err := IncomesForCrop(ctx, db, userID, cropID)
	if err != nil {
		return nil, err
	}

	income, err := sum(ctx, db, incomeLedger, userID, &cropID)
	if err != nil {
		return nil, err
	}
	expense, err := sum(ctx, db, expenseLedger, userID, &cropID)
	if err != nil {
		return nil, err
	}

	return &CropSummary{
		Crop:     *crop,
		Expenses: expenses,
		Incomes:  incomes,
		Income:   income,
		Expense:  expense,
		Profit:   income.Sub(expense),
	}, nil
}

// sum adds up the ledger column for the user, optionally restricted to one crop.
// An empty set sums to zero.
func sum(ctx context.Context, db *gorm.DB, l ledger, userID uint64, cropID *uint64) (decimal.Decimal, error) {
	query := withIndexHint(quiet(db).WithContext(ctx).Model(l.model), l.index).
		Where("user_id = ?", userID)
	if cropID != nil {
		query = query.Where("crop_id = ?", *cropID)
	}

	if !sumsExactly(db) {
		rows, err := query.Select(l.column).Rows()
		if err != nil {
			return decimal.Zero, err
		}
		defer rows.Close()

		total := decimal.Zero
		for rows.Next() {
			var value decimal.Decimal
			if err := rows.Scan(&value); err != nil {
				return decimal.Zero, err
			}
			total = total.Add(value)
		}
		return total, rows.Err()
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(" + l.column + ")").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

type cropSum struct {
	CropID uint64
	Total  decimal.NullDecimal
}

// sumByCrop adds up the ledger column per crop for the user
func sumByCrop(ctx context.Context, db *gorm.DB, l ledger, userID uint64) (map[uint64]decimal.Decimal, error) {
	query := withIndexHint(quiet(db).WithContext(ctx).Model(l.model), l.index).
		Where("user_id = ? AND crop_id IS NOT NULL", userID)
	if sumsExactly(db) {
		query = query.Select("crop_id, SUM(" + l.column + ") AS total").Group("crop_id")
	} else {
		query = query.Select("crop_id, " + l.column + " AS total")
	}

	var rows []cropSum
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[uint64]decimal.Decimal, len(rows))
	for _, row := range rows {
		if row.Total.Valid {
			totals[row.CropID] = totals[row.CropID].Add(row.Total.Decimal)
		}
	}
	return totals, nil
}

// sumsExactly reports whether SUM over the dialect's decimal columns is exact.
// SQLite sums as REAL, so its rows are added up here instead.
func sumsExactly(db *gorm.DB) bool {
	return db.Dialector.Name() != "sqlite"
}

// withIndexHint pins the (user_id, crop_id) index on MySQL
func withIndexHint(db *gorm.DB, index string) *gorm.DB {
	if db.Dialector.Name() == "mysql" {
		return db.Clauses(hints.UseIndex(index))
	}
	return db
}
