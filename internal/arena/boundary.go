// SPDX-License-Identifier: Unlicense OR MIT

package arena

import (
	"github.com/hutorny-eu/mmiotest/internal/mlog"
	"github.com/hutorny-eu/mmiotest/mmerr"
	"github.com/hutorny-eu/mmiotest/region"
)

// CheckBoundary reports whether an arena of requestedSize bytes would
// stay below the running binary's own loaded image, failing per onFail
// if it wouldn't. If the boundary can't be determined (a platform
// without /proc/self/maps), the check passes: that mirrors the
// original only ever running where &__executable_start resolves.
func (a *Arena) CheckBoundary(requestedSize uintptr, onFail OnFail) (bool, error) {
	boundary, err := executableLoadAddress()
	if err != nil {
		return true, nil
	}
	if requestedSize <= boundary {
		return true, nil
	}
	failure := &mmerr.ArenaNotFullyAvailable{Requested: requestedSize, Available: boundary}
	switch onFail {
	case Throws:
		return false, failure
	case Logs:
		mlog.Logger(mlog.Arena).Error(failure.Error())
		return false, nil
	default: // Returns
		return false, nil
	}
}

// CheckPageSize reports whether actual matches region.PageSize,
// failing per onFail if it doesn't. A mismatch means the arena's
// compile-time page size assumption doesn't hold on this host.
func (a *Arena) CheckPageSize(actual int, onFail OnFail) (bool, error) {
	if actual == region.PageSize {
		return true, nil
	}
	failure := &mmerr.PageSizeMismatch{Actual: actual, Expected: region.PageSize}
	switch onFail {
	case Throws:
		return false, failure
	case Logs:
		mlog.Logger(mlog.Arena).Error(failure.Error())
		return false, nil
	default:
		return false, nil
	}
}
