package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Long tracks through slow codecs can take a while to transcode.
	timeout = 120 * time.Second
)
