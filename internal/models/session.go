// session.go
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

// Session is a stored web session. ExpiresAt is a unix timestamp in seconds, 0 means no expiry.
type Session struct {
	ID        string `gorm:"primaryKey;size:64"`
	Data      []byte
	ExpiresAt int64 `gorm:"not null;default:0;index:idx_sessions_expires_at"`
}

// TableName overrides the table name for Session
func (Session) TableName() string {
	return "sessions"
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Crop{},
		&Expense{},
		&Income{},
		&Session{},
	}
}
