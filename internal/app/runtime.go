package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "LUNCHLINE_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether the binaries should skip runtime side effects
// such as opening listeners or connecting to backing services. Tests set the
// flag through the blank-importable helper package.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads the flag after a test mutates the environment.
func RefreshTestMode() {
	detectTestMode()
}
