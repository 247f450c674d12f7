// income.go
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
	"time"
)

// Income is a revenue record. TotalAmount is Quantity * PricePerUnit as of creation
// and is stored, never recomputed.
type Income struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64    `gorm:"not null;index:idx_incomes_user_crop,priority:1" json:"user_id"`
	User         *User     `json:"-"`
	CropID       *uint64   `gorm:"index:idx_incomes_user_crop,priority:2" json:"crop_id"`
	Crop         *Crop     `json:"-"`
	Quantity     Decimal   `gorm:"precision:20;scale:4;not null" json:"quantity"`
	PricePerUnit Decimal   `gorm:"precision:20;scale:4;not null" json:"price_per_unit"`
	TotalAmount  Decimal   `gorm:"precision:28;scale:8;not null" json:"total_amount"`
	Details      string    `gorm:"size:200" json:"details"`
	Date         string    `gorm:"size:20" json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides the table name for Income
func (Income) TableName() string {
	return "incomes"
}
