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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/farm-ledger/internal/metrics"
	"github.com/localnerve/farm-ledger/internal/services"
	"github.com/localnerve/farm-ledger/internal/utils"
	"gorm.io/gorm"
)

// RecordHandler handles the per-user crop, expense and income records
type RecordHandler struct {
	DB *gorm.DB
}

// ListCrops handles GET /api/crops
// @Summary List crops
// @Description The current user's crops, newest first
// @Tags Crops
// @Produce json
// @Security CookieAuth
// @Success 200 {array} models.Crop
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /crops [get]
func (h *RecordHandler) ListCrops(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "listCrops")
	}

	crops, err := services.ListCrops(c.UserContext(), h.DB, user.ID)
	if err != nil {
		return respondError(c, err, "listCrops")
	}
	return c.Status(fiber.StatusOK).JSON(crops)
}

// CreateCrop handles POST /api/crops
// @Summary Add a crop
// @Tags Crops
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security CookieAuth
// @Param body body handlers.CropRequest true "Crop"
// @Success 201 {object} utils.CreatedResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /crops [post]
func (h *RecordHandler) CreateCrop(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "createCrop")
	}
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, err, "createCrop")
	}

	crop, err := services.CreateCrop(c.UserContext(), h.DB, user.ID, services.CropInput{
		CropName:    f.Value("crop_name"),
		Area:        f.Value("area"),
		Season:      f.Value("season"),
		PlantedDate: f.Value("planted_date"),
	})
	if err != nil {
		return respondError(c, err, "createCrop")
	}

	metrics.RecordsCreated.WithLabelValues("crop").Inc()
	return utils.CreatedResponse(c, crop.ID, nil)
}

// GetCrop handles GET /api/crops/:id
// @Summary Crop summary
// @Description One crop with its expenses, income and profit
// @Tags Crops
// @Produce json
// @Security CookieAuth
// @Param id path int true "Crop ID"
// @Success 200 {object} services.CropSummary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /crops/{id} [get]
func (h *RecordHandler) GetCrop(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "getCrop")
	}
	cropID, err := services.ParseID("id", c.Params("id"))
	if err != nil {
		return respondError(c, err, "getCrop")
	}

	summary, err := services.BuildCropSummary(c.UserContext(), h.DB, user.ID, cropID)
	if err != nil {
		return respondError(c, err, "getCrop")
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}

// ListExpenses handles GET /api/expenses
// @Summary List expenses
// @Description The current user's expenses, newest first
// @Tags Expenses
// @Produce json
// @Security CookieAuth
// @Success 200 {array} models.Expense
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /expenses [get]
func (h *RecordHandler) ListExpenses(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "listExpenses")
	}

	expenses, err := services.ListExpenses(c.UserContext(), h.DB, user.ID)
	if err != nil {
		return respondError(c, err, "listExpenses")
	}
	return c.Status(fiber.StatusOK).JSON(expenses)
}

// CreateExpense handles POST /api/expenses
// @Summary Add an expense
// @Description expense_type is "general" or "crop". Crop expenses need a crop_id the user owns.
// @Tags Expenses
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security CookieAuth
// @Param body body handlers.ExpenseRequest true "Expense"
// @Success 201 {object} utils.CreatedResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /expenses [post]
func (h *RecordHandler) CreateExpense(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "createExpense")
	}
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, err, "createExpense")
	}

	expense, err := services.CreateExpense(c.UserContext(), h.DB, user.ID, services.ExpenseInput{
		ExpenseType: f.Value("expense_type"),
		Category:    f.Value("category"),
		Description: f.Value("description"),
		Amount:      f.Value("amount"),
		Date:        f.Value("date"),
		CropID:      f.Value("crop_id"),
	})
	if err != nil {
		return respondError(c, err, "createExpense")
	}

	metrics.RecordsCreated.WithLabelValues("expense").Inc()
	return utils.CreatedResponse(c, expense.ID, nil)
}

// ListIncome handles GET /api/income
// @Summary List income
// @Description The current user's income records, newest first, with their sum
// @Tags Income
// @Produce json
// @Security CookieAuth
// @Success 200 {object} handlers.IncomeListResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /income [get]
func (h *RecordHandler) ListIncome(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "listIncome")
	}

	incomes, err := services.ListIncomes(c.UserContext(), h.DB, user.ID)
	if err != nil {
		return respondError(c, err, "listIncome")
	}
	total, err := services.TotalIncome(c.UserContext(), h.DB, user.ID)
	if err != nil {
		return respondError(c, err, "listIncome")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"incomes":      incomes,
		"total_income": total,
	})
}

// CreateIncome handles POST /api/income
// @Summary Record income
// @Description The stored total is quantity times price
// @Tags Income
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security CookieAuth
// @Param body body handlers.IncomeRequest true "Income"
// @Success 201 {object} handlers.IncomeCreatedResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /income [post]
func (h *RecordHandler) CreateIncome(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err, "createIncome")
	}
	f, err := parseForm(c)
	if err != nil {
		return respondError(c, err, "createIncome")
	}

	income, err := services.CreateIncome(c.UserContext(), h.DB, user.ID, services.IncomeInput{
		CropID:   f.Value("crop_id"),
		Quantity: f.Value("quantity"),
		Price:    f.Value("price"),
		Details:  f.Value("details"),
		Date:     f.Value("date"),
	})
	if err != nil {
		return respondError(c, err, "createIncome")
	}

	metrics.RecordsCreated.WithLabelValues("income").Inc()
	return utils.CreatedResponse(c, income.ID, fiber.Map{"total": income.TotalAmount})
}

// CropRequest documents the crop body
type CropRequest struct {
	CropName    string `json:"crop_name" example:"Wheat"`
	Area        string `json:"area" example:"2.5"`
	Season      string `json:"season" example:"Rabi"`
	PlantedDate string `json:"planted_date" example:"2024-11-01"`
}

// ExpenseRequest documents the expense body
type ExpenseRequest struct {
	ExpenseType string `json:"expense_type" example:"crop"`
	Category    string `json:"category" example:"Seeds"`
	Description string `json:"description" example:"Seed bags"`
	Amount      string `json:"amount" example:"500"`
	Date        string `json:"date" example:"2024-11-02"`
	CropID      string `json:"crop_id" example:"1"`
}

// IncomeRequest documents the income body
type IncomeRequest struct {
	CropID   string `json:"crop_id" example:"1"`
	Quantity string `json:"quantity" example:"100"`
	Price    string `json:"price" example:"20"`
	Details  string `json:"details" example:"Mandi sale"`
	Date     string `json:"date" example:"2025-04-10"`
}

// IncomeListResponse documents GET /api/income
type IncomeListResponse struct {
	Incomes     []any  `json:"incomes"`
	TotalIncome string `json:"total_income" example:"2000"`
}

// IncomeCreatedResponse documents POST /api/income
type IncomeCreatedResponse struct {
	utils.CreatedResponseStruct
	Total string `json:"total" example:"2000"`
}
