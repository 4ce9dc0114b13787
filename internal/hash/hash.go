/*
Copyright © 2026 the GMCorr authors.
This file is part of GMCorr.

GMCorr is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GMCorr is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GMCorr.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash fingerprints simulation inputs so that stored solutions can
// be matched with the grid they were computed for.
package hash

import (
	"encoding/gob"
	"encoding/hex"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SpewKeys:                true,
}

// Fingerprint returns a hexadecimal FNV-128a digest of v. Values are
// digested through their gob encoding; values gob cannot encode (for
// example structs without exported fields) fall back to a
// deterministic spew dump.
func Fingerprint(v interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(v); err != nil {
		h.Reset()
		printer.Fprintf(h, "%#v", v)
	}
	return hex.EncodeToString(h.Sum(nil))
}
