// handlers_test.go
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

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/farm-ledger/internal/config"
	"github.com/localnerve/farm-ledger/internal/database"
	"github.com/localnerve/farm-ledger/internal/handlers"
	"github.com/localnerve/farm-ledger/internal/metrics"
	"github.com/localnerve/farm-ledger/internal/middleware"
	"github.com/localnerve/farm-ledger/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

// setupTestApp mounts the API on an in-memory database with database-backed sessions
func setupTestApp(t *testing.T) (*fiber.App, *config.Config, *gorm.DB) {
	t.Helper()

	cfg := testutil.TestConfig()
	db := testutil.OpenTestDB(t, cfg)

	storage := database.NewSessionStorage(db, 0)
	t.Cleanup(func() { storage.Close() })
	store := middleware.NewSessionStore(cfg, storage)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	handlers.Routes(api, cfg, db, store)
	app.Use(handlers.NotFound)

	return app, cfg, db
}

func registerAndLogin(t *testing.T, app *fiber.App, cfg *config.Config, name, email, password string) string {
	t.Helper()
	resp := testutil.DoJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, "")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	return testutil.Login(t, app, cfg.SessionCookieName, email, password)
}

func postForm(t *testing.T, app *fiber.App, path string, values url.Values, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func assertErrorType(t *testing.T, resp *http.Response, status int, errorType string) {
	t.Helper()
	testutil.AssertStatus(t, resp, status)

	var body map[string]interface{}
	testutil.ParseJSON(t, resp, &body)
	if body["type"] != errorType {
		t.Errorf("Expected error type %s, got %v (%v)", errorType, body["type"], body["message"])
	}
	if body["ok"] != false {
		t.Errorf("Expected ok false, got %v", body["ok"])
	}
}

func createdID(t *testing.T, resp *http.Response) string {
	t.Helper()
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	var body map[string]interface{}
	testutil.ParseJSON(t, resp, &body)
	id, ok := body["id"].(float64)
	if !ok || id <= 0 {
		t.Fatalf("Expected a positive id, got %v", body["id"])
	}
	return strconv.FormatFloat(id, 'f', 0, 64)
}

// TestFarmScenario walks one farmer from registration to the dashboard
func TestFarmScenario(t *testing.T) {
	app, cfg, _ := setupTestApp(t)

	resp := testutil.DoJSON(t, app, "POST", "/api/auth/register", map[string]string{
		"name":     "Al",
		"email":    "a@x.com",
		"password": "pw",
	}, "")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var registered map[string]interface{}
	testutil.ParseJSON(t, resp, &registered)
	if registered["name"] != "Al" || registered["email"] != "a@x.com" || registered["id"] == nil {
		t.Errorf("Unexpected registration body: %v", registered)
	}
	if _, leaked := registered["password_hash"]; leaked {
		t.Error("Password hash must not be returned")
	}

	cookie := testutil.Login(t, app, cfg.SessionCookieName, "a@x.com", "pw")

	wheatID := createdID(t, testutil.DoJSON(t, app, "POST", "/api/crops", map[string]interface{}{
		"crop_name":    "Wheat",
		"area":         2.5,
		"season":       "Rabi",
		"planted_date": "2024-01-01",
	}, cookie))

	createdID(t, testutil.DoJSON(t, app, "POST", "/api/expenses", map[string]interface{}{
		"expense_type": "crop",
		"category":     "seed",
		"amount":       100,
		"crop_id":      wheatID,
	}, cookie))

	resp = testutil.DoJSON(t, app, "POST", "/api/income", map[string]interface{}{
		"crop_id":  wheatID,
		"quantity": 20,
		"price":    10,
	}, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var created map[string]interface{}
	testutil.ParseJSON(t, resp, &created)
	testutil.AssertDecimal(t, "income total", testutil.Decimal(t, created["total"]), "200")

	t.Run("Dashboard", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, "GET", "/api/dashboard", nil, cookie)
		testutil.AssertStatus(t, resp, fiber.StatusOK)

		var dashboard map[string]interface{}
		testutil.ParseJSON(t, resp, &dashboard)
		testutil.AssertDecimal(t, "total_income", testutil.Decimal(t, dashboard["total_income"]), "200")
		testutil.AssertDecimal(t, "total_expense", testutil.Decimal(t, dashboard["total_expense"]), "100")
		testutil.AssertDecimal(t, "profit", testutil.Decimal(t, dashboard["profit"]), "100")

		perCrop, ok := dashboard["per_crop"].([]interface{})
		if !ok || len(perCrop) != 1 {
			t.Fatalf("Expected one per_crop entry, got %v", dashboard["per_crop"])
		}
		entry := perCrop[0].(map[string]interface{})
		if entry["name"] != "Wheat" {
			t.Errorf("Expected Wheat, got %v", entry["name"])
		}
		testutil.AssertDecimal(t, "wheat income", testutil.Decimal(t, entry["income"]), "200")
		testutil.AssertDecimal(t, "wheat expense", testutil.Decimal(t, entry["expense"]), "100")
	})

	t.Run("Lists", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, "GET", "/api/crops", nil, cookie)
		testutil.AssertStatus(t, resp, fiber.StatusOK)
		var crops []map[string]interface{}
		testutil.ParseJSON(t, resp, &crops)
		if len(crops) != 1 || crops[0]["crop_name"] != "Wheat" {
			t.Errorf("Unexpected crops: %v", crops)
		}

		resp = testutil.DoJSON(t, app, "GET", "/api/expenses", nil, cookie)
		testutil.AssertStatus(t, resp, fiber.StatusOK)
		var expenses []map[string]interface{}
		testutil.ParseJSON(t, resp, &expenses)
		if len(expenses) != 1 || expenses[0]["category"] != "seed" {
			t.Errorf("Unexpected expenses: %v", expenses)
		}

		resp = testutil.DoJSON(t, app, "GET", "/api/income", nil, cookie)
		testutil.AssertStatus(t, resp, fiber.StatusOK)
		var income map[string]interface{}
		testutil.ParseJSON(t, resp, &income)
		if incomes, _ := income["incomes"].([]interface{}); len(incomes) != 1 {
			t.Errorf("Expected one income, got %v", income["incomes"])
		}
		testutil.AssertDecimal(t, "total_income", testutil.Decimal(t, income["total_income"]), "200")
	})

	t.Run("CropSummary", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, "GET", "/api/crops/"+wheatID, nil, cookie)
		testutil.AssertStatus(t, resp, fiber.StatusOK)

		var summary map[string]interface{}
		testutil.ParseJSON(t, resp, &summary)
		testutil.AssertDecimal(t, "profit", testutil.Decimal(t, summary["profit"]), "100")
		if expenses, _ := summary["expenses"].([]interface{}); len(expenses) != 1 {
			t.Errorf("Expected one crop expense, got %v", summary["expenses"])
		}

		assertErrorType(t, testutil.DoJSON(t, app, "GET", "/api/crops/9999", nil, cookie), fiber.StatusNotFound, "data.not_found")
		assertErrorType(t, testutil.DoJSON(t, app, "GET", "/api/crops/wheat", nil, cookie), fiber.StatusBadRequest, "data.validation.input")
	})

	t.Run("Me", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, "GET", "/api/auth/me", nil, cookie)
		testutil.AssertStatus(t, resp, fiber.StatusOK)
		var me map[string]interface{}
		testutil.ParseJSON(t, resp, &me)
		if me["email"] != "a@x.com" {
			t.Errorf("Expected a@x.com, got %v", me["email"])
		}
	})

	t.Run("Logout", func(t *testing.T) {
		resp := testutil.DoJSON(t, app, "POST", "/api/auth/logout", nil, cookie)
		testutil.AssertStatus(t, resp, fiber.StatusOK)

		assertErrorType(t, testutil.DoJSON(t, app, "GET", "/api/dashboard", nil, cookie), fiber.StatusUnauthorized, "auth.unauthenticated")
	})
}

func TestRegisterErrors(t *testing.T) {
	app, _, _ := setupTestApp(t)

	body := map[string]string{"name": "Al", "email": "a@x.com", "password": "pw"}
	testutil.AssertStatus(t, testutil.DoJSON(t, app, "POST", "/api/auth/register", body, ""), fiber.StatusCreated)

	body["email"] = "A@X.COM"
	assertErrorType(t, testutil.DoJSON(t, app, "POST", "/api/auth/register", body, ""), fiber.StatusConflict, "auth.duplicate_email")

	assertErrorType(t, testutil.DoJSON(t, app, "POST", "/api/auth/register", map[string]string{"name": "Bo"}, ""),
		fiber.StatusBadRequest, "data.validation.input")

	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertErrorType(t, resp, fiber.StatusBadRequest, "data.validation.input")
}

func TestLoginFailure(t *testing.T) {
	app, cfg, _ := setupTestApp(t)
	registerAndLogin(t, app, cfg, "Al", "a@x.com", "pw")

	resp := testutil.DoJSON(t, app, "POST", "/api/auth/login", map[string]string{"email": "a@x.com", "password": "wrong"}, "")
	assertErrorType(t, resp, fiber.StatusUnauthorized, "auth.failed")

	resp = testutil.DoJSON(t, app, "POST", "/api/auth/login", map[string]string{"email": "nobody@x.com", "password": "pw"}, "")
	assertErrorType(t, resp, fiber.StatusUnauthorized, "auth.failed")
}

func TestUnauthenticatedRoutes(t *testing.T) {
	app, _, _ := setupTestApp(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/api/auth/me"},
		{"GET", "/api/crops"},
		{"POST", "/api/crops"},
		{"GET", "/api/crops/1"},
		{"GET", "/api/expenses"},
		{"POST", "/api/expenses"},
		{"GET", "/api/income"},
		{"POST", "/api/income"},
		{"GET", "/api/dashboard"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp := testutil.DoJSON(t, app, route.method, route.path, nil, "")
			assertErrorType(t, resp, fiber.StatusUnauthorized, "auth.unauthenticated")
		})
	}

	// A made-up cookie is no better than none
	resp := testutil.DoJSON(t, app, "GET", "/api/dashboard", nil, "farm_session=not-a-session")
	assertErrorType(t, resp, fiber.StatusUnauthorized, "auth.unauthenticated")
}

func TestFormEncodedBodies(t *testing.T) {
	app, cfg, _ := setupTestApp(t)

	resp := postForm(t, app, "/api/auth/register", url.Values{
		"name":     {"Al"},
		"email":    {"a@x.com"},
		"password": {"pw"},
	}, "")
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	resp = postForm(t, app, "/api/auth/login", url.Values{"email": {"a@x.com"}, "password": {"pw"}}, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	cookie := testutil.SessionCookie(t, resp, cfg.SessionCookieName)

	cropID := createdID(t, postForm(t, app, "/api/crops", url.Values{
		"crop_name": {"Corn"},
		"area":      {"1.25"},
	}, cookie))

	// General expenses drop the crop reference
	createdID(t, postForm(t, app, "/api/expenses", url.Values{
		"expense_type": {"general"},
		"category":     {"fuel"},
		"amount":       {"40"},
		"crop_id":      {cropID},
	}, cookie))

	resp = testutil.DoJSON(t, app, "GET", "/api/expenses", nil, cookie)
	var expenses []map[string]interface{}
	testutil.ParseJSON(t, resp, &expenses)
	if len(expenses) != 1 || expenses[0]["crop_id"] != nil {
		t.Errorf("Expected one general expense without crop, got %v", expenses)
	}

	resp = postForm(t, app, "/api/expenses", url.Values{
		"expense_type": {"crop"},
		"category":     {"seed"},
		"amount":       {"10"},
	}, cookie)
	assertErrorType(t, resp, fiber.StatusBadRequest, "data.validation.input")
}

func TestCrossUserIsolation(t *testing.T) {
	app, cfg, _ := setupTestApp(t)

	al := registerAndLogin(t, app, cfg, "Al", "a@x.com", "pw")
	bo := registerAndLogin(t, app, cfg, "Bo", "b@x.com", "pw")

	wheatID := createdID(t, testutil.DoJSON(t, app, "POST", "/api/crops", map[string]interface{}{
		"crop_name": "Wheat",
		"area":      "2",
	}, al))
	createdID(t, testutil.DoJSON(t, app, "POST", "/api/income", map[string]interface{}{
		"crop_id":  wheatID,
		"quantity": "10",
		"price":    "5",
	}, al))

	assertErrorType(t, testutil.DoJSON(t, app, "GET", "/api/crops/"+wheatID, nil, bo), fiber.StatusNotFound, "data.not_found")
	assertErrorType(t, testutil.DoJSON(t, app, "POST", "/api/income", map[string]interface{}{
		"crop_id":  wheatID,
		"quantity": 1,
		"price":    1,
	}, bo), fiber.StatusNotFound, "data.not_found")

	resp := testutil.DoJSON(t, app, "GET", "/api/dashboard", nil, bo)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var dashboard map[string]interface{}
	testutil.ParseJSON(t, resp, &dashboard)
	testutil.AssertDecimal(t, "bo income", testutil.Decimal(t, dashboard["total_income"]), "0")
	if perCrop, _ := dashboard["per_crop"].([]interface{}); len(perCrop) != 0 {
		t.Errorf("Expected no crops for Bo, got %v", dashboard["per_crop"])
	}

	resp = testutil.DoJSON(t, app, "GET", "/api/crops", nil, bo)
	var crops []interface{}
	testutil.ParseJSON(t, resp, &crops)
	if len(crops) != 0 {
		t.Errorf("Expected Bo to see no crops, got %v", crops)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp := testutil.DoJSON(t, app, "GET", "/api/health", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var health map[string]interface{}
	testutil.ParseJSON(t, resp, &health)
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", health["status"])
	}

	assertErrorType(t, testutil.DoJSON(t, app, "GET", "/api/nope", nil, ""), fiber.StatusNotFound, "data.not_found")
}

func TestBusinessMetrics(t *testing.T) {
	app, cfg, _ := setupTestApp(t)

	registrations := promtestutil.ToFloat64(metrics.Registrations)
	failures := promtestutil.ToFloat64(metrics.Logins.WithLabelValues("failure"))
	crops := promtestutil.ToFloat64(metrics.RecordsCreated.WithLabelValues("crop"))

	cookie := registerAndLogin(t, app, cfg, "Al", "a@x.com", "pw")
	testutil.DoJSON(t, app, "POST", "/api/auth/login", map[string]string{"email": "a@x.com", "password": "bad"}, "")
	createdID(t, testutil.DoJSON(t, app, "POST", "/api/crops", map[string]string{"crop_name": "Wheat", "area": "1"}, cookie))

	if got := promtestutil.ToFloat64(metrics.Registrations) - registrations; got != 1 {
		t.Errorf("Expected 1 registration counted, got %v", got)
	}
	if got := promtestutil.ToFloat64(metrics.Logins.WithLabelValues("failure")) - failures; got != 1 {
		t.Errorf("Expected 1 failed login counted, got %v", got)
	}
	if got := promtestutil.ToFloat64(metrics.RecordsCreated.WithLabelValues("crop")) - crops; got != 1 {
		t.Errorf("Expected 1 crop counted, got %v", got)
	}
}
