// flex_string_test.go
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

package types

import (
	"encoding/json"
	"testing"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`{"v": "Wheat"}`, "Wheat"},
		{`{"v": 2.50}`, "2.50"},
		{`{"v": 20}`, "20"},
		{`{"v": "2.5"}`, "2.5"},
		{`{"v": true}`, "true"},
		{`{"v": null}`, ""},
		{`{}`, ""},
	}

	for _, tt := range tests {
		var body map[string]FlexString
		if err := json.Unmarshal([]byte(tt.input), &body); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tt.input, err)
		}
		if got := body["v"].String(); got != tt.expected {
			t.Errorf("Unmarshal(%s): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestFlexStringRejectsComposites(t *testing.T) {
	for _, input := range []string{`{"v": [1]}`, `{"v": {"a": 1}}`} {
		var body map[string]FlexString
		if err := json.Unmarshal([]byte(input), &body); err == nil {
			t.Errorf("Expected error for %s", input)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	if got := NewValidationError("amount", "is required").Error(); got != "invalid amount: is required" {
		t.Errorf("Unexpected validation message %q", got)
	}
	custom := &CustomError{Code: 401, Message: "Login required", Type: "auth.unauthenticated"}
	if got := custom.Error(); got != "401: Login required [type: auth.unauthenticated]" {
		t.Errorf("Unexpected custom error message %q", got)
	}
}
