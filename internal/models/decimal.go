// decimal.go
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

package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Decimal wraps decimal.Decimal so each database driver gets an exact column type.
// Columns take their size from the precision and scale tags.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal wraps d
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{Decimal: d}
}

// Value promotes the embedded Decimal's Value method
func (d Decimal) Value() (driver.Value, error) {
	return d.Decimal.Value()
}

// Scan promotes the embedded Decimal's Scan method
func (d *Decimal) Scan(value interface{}) error {
	return d.Decimal.Scan(value)
}

// GormDBDataType maps the column per driver.
// SQLite gives DECIMAL columns NUMERIC affinity and stores REAL, so there the value is kept as TEXT.
func (Decimal) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	precision, scale := field.Precision, field.Scale
	if precision == 0 {
		precision, scale = 20, 4
	}

	switch db.Dialector.Name() {
	case "sqlite":
		return "TEXT"
	case "postgres":
		return fmt.Sprintf("NUMERIC(%d,%d)", precision, scale)
	}
	return fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)
}
