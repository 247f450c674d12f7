// migrate.go
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

package database

import (
	"context"
	"fmt"
	"io/fs"
	"log"

	"github.com/localnerve/farm-ledger/data"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// gooseDialects maps GORM dialector names to goose dialects and their migration directories
var gooseDialects = map[string]struct {
	dialect goose.Dialect
	dir     string
}{
	"sqlite":   {goose.DialectSQLite3, "migrations/sqlite3"},
	"mysql":    {goose.DialectMySQL, "migrations/mysql"},
	"postgres": {goose.DialectPostgres, "migrations/postgres"},
}

// GooseMigrate applies the embedded SQL migrations for the connected dialect
func GooseMigrate(db *gorm.DB) error {
	target, ok := gooseDialects[db.Dialector.Name()]
	if !ok {
		return fmt.Errorf("no migrations for dialect %s", db.Dialector.Name())
	}

	fsys, err := fs.Sub(data.Migrations, target.dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations %s: %w", target.dir, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	provider, err := goose.NewProvider(target.dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(context.Background())
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Printf("Applied %d migration(s) from %s", len(results), target.dir)
	return nil
}
