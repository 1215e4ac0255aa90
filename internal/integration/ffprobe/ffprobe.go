package ffprobe

import "time"

const (
	name = "ffprobe"
	// Slow drives spinning up or network-mounted sources need a generous timeout.
	timeout = 60 * time.Second
)
