package smoketest

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultOrigin        = "http://localhost:8080"
	ProgressInterval     = time.Second
	PercentageMultiplier = 100
)
