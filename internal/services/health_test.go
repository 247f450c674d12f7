// health_test.go
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
	"testing"

	"github.com/localnerve/farm-ledger/internal/models"
	"github.com/localnerve/farm-ledger/internal/services"
	"github.com/localnerve/farm-ledger/internal/testutil"
)

func TestHealthCheck(t *testing.T) {
	cfg := testutil.TestConfig()
	db := testutil.OpenTestDB(t, cfg)

	result := services.HealthCheck(cfg, db)
	if !result.Healthy() {
		t.Fatalf("Expected healthy, got %+v", result)
	}
	if result.Database != "ok" || result.Schema != "ok" {
		t.Errorf("Expected database and schema ok, got %s/%s", result.Database, result.Schema)
	}

	if err := db.Migrator().DropTable(&models.Session{}); err != nil {
		t.Fatalf("Failed to drop sessions: %v", err)
	}

	result = services.HealthCheck(cfg, db)
	if result.Healthy() {
		t.Fatal("Expected unhealthy with a missing table")
	}
	if result.Schema != "incomplete" {
		t.Errorf("Expected schema incomplete, got %s", result.Schema)
	}
	if result.Details["missing_tables"] != "[sessions]" {
		t.Errorf("Expected sessions to be reported missing, got %q", result.Details["missing_tables"])
	}
}
