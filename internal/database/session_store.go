// session_store.go
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
	"errors"
	"log"
	"sync"
	"time"

	"github.com/localnerve/farm-ledger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SessionStorage is a fiber.Storage backed by the sessions table
type SessionStorage struct {
	db   *gorm.DB
	done chan struct{}
	once sync.Once
}

// NewSessionStorage creates the storage and starts purging expired sessions every gcInterval.
// A zero gcInterval disables the purge.
func NewSessionStorage(db *gorm.DB, gcInterval time.Duration) *SessionStorage {
	s := &SessionStorage{
		db:   db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}),
		done: make(chan struct{}),
	}
	if gcInterval > 0 {
		go s.gc(gcInterval)
	}
	return s
}

// Get returns the session data for key, or nil when it does not exist or has expired
func (s *SessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var sess models.Session
	err := s.db.Where("id = ? AND (expires_at = 0 OR expires_at > ?)", key, time.Now().Unix()).
		Take(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess.Data, nil
}

// Set stores val under key. A zero exp never expires.
func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	var expiresAt int64
	if exp > 0 {
		expiresAt = time.Now().Add(exp).Unix()
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&models.Session{ID: key, Data: val, ExpiresAt: expiresAt}).Error
}

// Delete removes key
func (s *SessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.db.Where("id = ?", key).Delete(&models.Session{}).Error
}

// Reset removes every session
func (s *SessionStorage) Reset() error {
	return s.db.Where("1 = 1").Delete(&models.Session{}).Error
}

// Close stops the expiry purge. The database connection is owned by the caller.
func (s *SessionStorage) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *SessionStorage) gc(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			err := s.db.Where("expires_at > 0 AND expires_at <= ?", now.Unix()).Delete(&models.Session{}).Error
			if err != nil {
				log.Printf("[session gc] failed to purge expired sessions: %v", err)
			}
		}
	}
}
