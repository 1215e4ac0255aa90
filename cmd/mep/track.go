package main

import (
	"fmt"
	"os"

	mastering "github.com/cheavireak/Mastering-Enhancement-Pipeline"
)

// trackFromPath wraps a file on disk as a batch input: identity, byte size,
// and bytes on demand.
func trackFromPath(path string) (mastering.TrackFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return mastering.TrackFile{}, fmt.Errorf("stating file: %w", err)
	}

	return mastering.TrackFile{
		Name: path,
		Size: info.Size(),
		Read: func() ([]byte, error) {
			return os.ReadFile(path) //nolint:gosec,wrapcheck // CLI tool reads user-specified audio files
		},
	}, nil
}

func tracksFromArgs(paths []string) ([]mastering.TrackFile, error) {
	tracks := make([]mastering.TrackFile, 0, len(paths))

	for _, path := range paths {
		track, err := trackFromPath(path)
		if err != nil {
			return nil, err
		}

		tracks = append(tracks, track)
	}

	return tracks, nil
}
