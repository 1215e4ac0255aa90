// Package wav decodes and encodes RIFF/WAVE files carrying integer PCM.
// Decoding normalizes to the planar float64 buffer the pipeline operates on;
// encoding writes the buffer back at its recorded bit depth.
package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cheavireak/Mastering-Enhancement-Pipeline/internal/types"
)

const (
	formatPCM = 1

	riffHeaderSize  = 12
	chunkHeaderSize = 8
	fmtChunkMinSize = 16
)

// Decode parses a RIFF/WAVE byte stream into an audio buffer. Only integer
// PCM at 16, 24, or 32 bits is supported; unknown chunks before data are
// skipped.
//
//nolint:gocognit,cyclop // chunk walk plus per-depth sample unpack
func Decode(raw []byte) (*types.AudioBuffer, error) {
	if len(raw) < riffHeaderSize ||
		!bytes.Equal(raw[0:4], []byte("RIFF")) ||
		!bytes.Equal(raw[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE stream", types.ErrDecode)
	}

	var (
		format  types.PCMFormat
		haveFmt bool
		data    []byte
	)

	offset := riffHeaderSize

	for offset+chunkHeaderSize <= len(raw) {
		chunkID := raw[offset : offset+4]
		chunkSize := int(binary.LittleEndian.Uint32(raw[offset+4 : offset+8]))
		body := raw[offset+chunkHeaderSize:]

		if chunkSize > len(body) {
			// Streaming writers (ffmpeg on a pipe) cannot backpatch the data
			// size; take whatever follows. Any other short chunk is corrupt.
			if !bytes.Equal(chunkID, []byte("data")) {
				return nil, fmt.Errorf("%w: truncated %q chunk", types.ErrDecode, chunkID)
			}

			chunkSize = len(body)
		}

		switch {
		case bytes.Equal(chunkID, []byte("fmt ")):
			if chunkSize < fmtChunkMinSize {
				return nil, fmt.Errorf("%w: short fmt chunk", types.ErrDecode)
			}

			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			if audioFormat != formatPCM {
				return nil, fmt.Errorf("%w: unsupported audio format %d (integer PCM only)", types.ErrDecode, audioFormat)
			}

			format.Channels = uint(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			format.BitDepth = types.BitDepth(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true
		case bytes.Equal(chunkID, []byte("data")):
			data = body[:chunkSize]
		}

		if data != nil && haveFmt {
			break
		}

		// Chunks are word-aligned.
		offset += chunkHeaderSize + chunkSize + chunkSize%2
	}

	if !haveFmt {
		return nil, fmt.Errorf("%w: missing fmt chunk", types.ErrDecode)
	}

	if data == nil {
		return nil, fmt.Errorf("%w: missing data chunk", types.ErrDecode)
	}

	if format.Channels == 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid format: %d channels at %d Hz", types.ErrDecode, format.Channels, format.SampleRate)
	}

	switch format.BitDepth {
	case types.Depth16, types.Depth24, types.Depth32:
	default:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", types.ErrDecode, format.BitDepth)
	}

	bytesPerSample := int(format.BitDepth / 8)
	numChannels := int(format.Channels)
	frameSize := bytesPerSample * numChannels
	frames := len(data) / frameSize

	buf := &types.AudioBuffer{
		SampleRate: format.SampleRate,
		Depth:      format.BitDepth,
		Samples:    make([][]float64, numChannels),
	}

	for ch := range buf.Samples {
		buf.Samples[ch] = make([]float64, frames)
	}

	for i := range frames {
		base := i * frameSize

		for ch := range numChannels {
			offset := base + ch*bytesPerSample

			switch format.BitDepth {
			case types.Depth16:
				sample := int16(binary.LittleEndian.Uint16(data[offset:]))
				buf.Samples[ch][i] = float64(sample) / 32768.0
			case types.Depth24:
				raw24 := int32(data[offset]) | int32(data[offset+1])<<8 | int32(data[offset+2])<<16
				if raw24&0x800000 != 0 {
					raw24 |= ^0xFFFFFF
				}

				buf.Samples[ch][i] = float64(raw24) / 8388608.0
			case types.Depth32:
				sample := int32(binary.LittleEndian.Uint32(data[offset:]))
				buf.Samples[ch][i] = float64(sample) / 2147483648.0
			}
		}
	}

	return buf, nil
}

// Encode serializes the buffer as a RIFF/WAVE stream at the buffer's bit
// depth. Samples beyond full scale are hard-clamped at the integer bounds.
func Encode(buf *types.AudioBuffer) ([]byte, error) {
	if !buf.Valid() {
		return nil, fmt.Errorf("%w: malformed audio buffer", types.ErrRender)
	}

	switch buf.Depth {
	case types.Depth16, types.Depth24, types.Depth32:
	default:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", types.ErrRender, buf.Depth)
	}

	bytesPerSample := int(buf.Depth / 8)
	numChannels := buf.Channels()
	frames := buf.Frames()
	frameSize := bytesPerSample * numChannels
	dataSize := frames * frameSize

	out := make([]byte, 0, riffHeaderSize+chunkHeaderSize+fmtChunkMinSize+chunkHeaderSize+dataSize)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(4+chunkHeaderSize+fmtChunkMinSize+chunkHeaderSize+dataSize))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, fmtChunkMinSize)
	out = binary.LittleEndian.AppendUint16(out, formatPCM)
	out = binary.LittleEndian.AppendUint16(out, uint16(numChannels))
	out = binary.LittleEndian.AppendUint32(out, uint32(buf.SampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(buf.SampleRate*frameSize))
	out = binary.LittleEndian.AppendUint16(out, uint16(frameSize))
	out = binary.LittleEndian.AppendUint16(out, uint16(buf.Depth))

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(dataSize))

	for i := range frames {
		for ch := range numChannels {
			sample := buf.Samples[ch][i]

			switch buf.Depth {
			case types.Depth16:
				out = binary.LittleEndian.AppendUint16(out, uint16(quantize(sample, 32768)))
			case types.Depth24:
				v := quantize(sample, 8388608)
				out = append(out, byte(v), byte(v>>8), byte(v>>16))
			case types.Depth32:
				out = binary.LittleEndian.AppendUint32(out, uint32(quantize(sample, 2147483648)))
			}
		}
	}

	return out, nil
}

// quantize scales a normalized sample to integer codes, clamping at the
// asymmetric two's-complement bounds.
func quantize(sample, scale float64) int32 {
	v := math.Round(sample * scale)

	if v > scale-1 {
		v = scale - 1
	}

	if v < -scale {
		v = -scale
	}

	return int32(v)
}
