// Package mcu speaks the brightness protocol of the dimming microcontroller:
// a fixed 7-byte frame sent as a single UDP datagram to a loopback peer.
package mcu

import (
	"encoding/hex"
	"strings"

	"github.com/jmylchreest/lightsd/internal/config"
	"github.com/jmylchreest/lightsd/internal/errors"
)

// FrameLen is the size of every brightness frame on the wire.
const FrameLen = 7

// Frame layout: start, length, command, sub-command, level, checksum, end.
const (
	frameStart      byte = 0xAA
	frameLength     byte = 0x04
	frameCommand    byte = 0x49
	frameSubcommand byte = 0xA1
	frameEnd        byte = 0x55

	levelIndex    = 4
	checksumIndex = 5
)

// Frame is one brightness datagram.
type Frame [FrameLen]byte

// Bytes returns the frame as a slice suitable for sending.
func (f Frame) Bytes() []byte {
	return f[:]
}

// Level returns the MCU dimming level (brightness / 8).
func (f Frame) Level() byte {
	return f[levelIndex]
}

// Checksum returns the checksum byte.
func (f Frame) Checksum() byte {
	return f[checksumIndex]
}

// String renders the frame as uppercase hex.
func (f Frame) String() string {
	return ToHex(f[:])
}

// Encode builds the frame for a brightness value. Values outside 0..255 are
// clamped first; the MCU level is brightness/8 (truncating).
func Encode(brightness int) Frame {
	if brightness < config.MinBrightness {
		brightness = config.MinBrightness
	} else if brightness > config.MaxBrightness {
		brightness = config.MaxBrightness
	}

	f := Frame{frameStart, frameLength, frameCommand, frameSubcommand, byte(brightness / 8), 0, frameEnd}
	f[checksumIndex] = checksum(f[1:checksumIndex])
	return f
}

// checksum is the 8-bit wrapping sum of b.
func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// DecodeFrame validates a raw datagram and returns its level.
func DecodeFrame(b []byte) (byte, error) {
	if len(b) != FrameLen {
		return 0, errors.InvalidInputf("frame length %d, want %d", len(b), FrameLen)
	}
	if b[0] != frameStart || b[1] != frameLength || b[2] != frameCommand || b[3] != frameSubcommand {
		return 0, errors.InvalidInputf("bad frame header %s", ToHex(b[:levelIndex]))
	}
	if b[FrameLen-1] != frameEnd {
		return 0, errors.InvalidInputf("bad frame trailer %02X", b[FrameLen-1])
	}
	if want := checksum(b[1:checksumIndex]); b[checksumIndex] != want {
		return 0, errors.InvalidInputf("checksum %02X, want %02X", b[checksumIndex], want)
	}
	return b[levelIndex], nil
}

// ToHex renders bytes as uppercase hex with no separators, e.g. "AA0449A110FE55".
func ToHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// FromHex parses a hex string in either case back into bytes.
func FromHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, errors.InvalidInputf("hex string has odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.InvalidInputf("invalid hex %q: %v", s, err)
	}
	return b, nil
}
