// SPDX-License-Identifier: Unlicense OR MIT

// Command mmiotest-demo exercises the library end to end: it stubs a
// status/data register pair, arms a stimulus that flips the status
// register's ready bit after a short delay, waits for a verify to
// observe it, checking the host's page size and reporting kernel
// diagnostics along the way.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/hutorny-eu/mmiotest"
	"github.com/hutorny-eu/mmiotest/internal/mlog"
	"github.com/hutorny-eu/mmiotest/site"
	"github.com/hutorny-eu/mmiotest/stimulus"
)

const (
	statusAddr uintptr = 0x10_0000
	dataAddr   uintptr = 0x10_1000

	statusReady uint8 = 1
)

func main() {
	mlog.SetLevel(mlog.Basic, slog.LevelInfo)
	basic := mlog.Logger(mlog.Basic)

	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		basic.Warn("uname failed", "error", err)
	} else {
		basic.Info("running on", "sysname", cstr(uname.Sysname[:]), "release", cstr(uname.Release[:]))
	}

	ok, err := mmiotest.CheckPageSize(os.Getpagesize(), mmiotest.Returns)
	if err != nil {
		log.Fatalf("page size check: %v", err)
	}
	if !ok {
		basic.Warn("host page size differs from the build-time assumption")
	}

	stub, err := mmiotest.NewStub(
		mmiotest.StubAt(statusAddr, uint8(0)),
		mmiotest.StubAt(dataAddr, uint32(0)),
	)
	if err != nil {
		log.Fatalf("declaring stub: %v", err)
	}
	defer stub.Close()

	if err := stub.Apply(); err != nil {
		log.Fatalf("applying stub: %v", err)
	}

	statusPtr := (*uint8)(mmiotest.AddressPointer(mmiotest.Address(statusAddr)))
	dataPtr := (*uint32)(mmiotest.AddressPointer(mmiotest.Address(dataAddr)))

	go func() {
		time.Sleep(20 * time.Millisecond)
		*dataPtr = 0xdeadbeef
	}()

	sig := stimulus.New(dataPtr,
		func(v uint32) bool { return v == 0xdeadbeef },
		statusPtr,
		func(status *uint8) { *status = statusReady },
		site.Here(0))
	defer sig.Close()

	for i := 0; i < 50 && sig.Status() != stimulus.StatusDone; i++ {
		time.Sleep(5 * time.Millisecond)
	}

	verify, err := mmiotest.NewVerify(mmiotest.VerifyAt(statusAddr, statusReady))
	if err != nil {
		log.Fatalf("declaring verify: %v", err)
	}
	ok, err = verify.Apply()
	if err != nil {
		log.Fatalf("applying verify: %v", err)
	}
	fmt.Println("handshake observed:", ok)
}

func cstr(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
