// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux

package arena

import "os"

// executableLoadAddress has no portable implementation outside Linux;
// callers treat its failure as "can't verify, don't block."
func executableLoadAddress() (uintptr, error) {
	return 0, os.ErrNotExist
}
