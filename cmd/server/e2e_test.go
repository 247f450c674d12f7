// e2e_test.go
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

package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"

	"github.com/localnerve/farm-ledger/internal/database"
	"github.com/localnerve/farm-ledger/internal/services"
	"github.com/localnerve/farm-ledger/internal/testutil"
)

// TestE2EWithFullStack runs the built image against a database container
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	if os.Getenv("DB_IMAGE") == "" {
		t.Skip("DB_IMAGE not set")
	}

	ctx := context.Background()

	tc, err := testutil.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	appHost, _ := tc.AppContainer.Host(ctx)
	appPort, _ := tc.AppContainer.MappedPort(ctx, "3000")
	baseURL := fmt.Sprintf("http://%s:%s", appHost, appPort.Port())

	t.Run("HealthCheck", func(t *testing.T) {
		cfg := tc.HostConfig(t)
		db, err := database.Connect(cfg)
		if err != nil {
			t.Fatalf("Failed to connect to test database: %v", err)
		}
		defer database.Close(db)

		if result := services.HealthCheck(cfg, db); !result.Healthy() {
			t.Errorf("Health check failed: %+v", result)
		}
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/metrics")
		if err != nil {
			t.Fatalf("Failed to get metrics: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200 for metrics, got %d", resp.StatusCode)
		}
		if !bytes.Contains(body, []byte("farmledger_")) {
			t.Errorf("Expected farmledger metrics. Body: %s", body)
		}
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/swagger/index.html")
		if err != nil {
			t.Fatalf("Failed to get Swagger UI: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
		}
	})

	t.Run("FarmScenario", func(t *testing.T) {
		testFarmScenario(t, baseURL)
	})
}

func testFarmScenario(t *testing.T, baseURL string) {
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	post := func(path string, body map[string]interface{}, expected int) map[string]interface{} {
		t.Helper()
		payload, _ := json.Marshal(body)
		resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("POST %s failed: %v", path, err)
		}
		testutil.AssertStatus(t, resp, expected)
		var result map[string]interface{}
		testutil.ParseJSON(t, resp, &result)
		return result
	}

	email := fmt.Sprintf("al-%d@x.com", time.Now().UnixNano())
	password := testutil.GeneratePassword()

	post("/api/auth/register", map[string]interface{}{"name": "Al", "email": email, "password": password}, http.StatusCreated)
	post("/api/auth/login", map[string]interface{}{"email": email, "password": password}, http.StatusOK)

	crop := post("/api/crops", map[string]interface{}{
		"crop_name":    "Wheat",
		"area":         2.5,
		"season":       "Rabi",
		"planted_date": "2024-01-01",
	}, http.StatusCreated)
	cropID := crop["id"]

	post("/api/expenses", map[string]interface{}{
		"expense_type": "crop",
		"category":     "seed",
		"amount":       100,
		"crop_id":      cropID,
	}, http.StatusCreated)
	post("/api/income", map[string]interface{}{
		"crop_id":  cropID,
		"quantity": 20,
		"price":    10,
	}, http.StatusCreated)

	resp, err := client.Get(baseURL + "/api/dashboard")
	if err != nil {
		t.Fatalf("GET /api/dashboard failed: %v", err)
	}
	testutil.AssertStatus(t, resp, http.StatusOK)

	var dashboard map[string]interface{}
	testutil.ParseJSON(t, resp, &dashboard)
	testutil.AssertDecimal(t, "total_income", testutil.Decimal(t, dashboard["total_income"]), "200")
	testutil.AssertDecimal(t, "total_expense", testutil.Decimal(t, dashboard["total_expense"]), "100")
	testutil.AssertDecimal(t, "profit", testutil.Decimal(t, dashboard["profit"]), "100")
}
