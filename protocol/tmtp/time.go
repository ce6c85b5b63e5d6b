/*
NAME
  time.go - reference timestamp and bitrate values carried alongside a
  received transfer frame.

DESCRIPTION
  See Readme.md

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tmtp

import "github.com/pkg/errors"

// FrameTimestamp holds a reception timestamp as whole seconds since epoch
// plus a fractional part in [0,1). It is not part of the wire protocol; the
// transport layer supplies it per inbound frame and the virtual channels use
// it to estimate per-packet timestamps.
//
// The zero value is "no timestamp provided": a timestamp with zero seconds
// is not Valid, so callers never need to pass a nil sentinel.
type FrameTimestamp struct {
	seconds   uint64
	fractions float64
}

// NewFrameTimestamp returns a timestamp holding secs whole seconds and
// fracs fractional seconds, which must satisfy 0 <= fracs < 1.
func NewFrameTimestamp(secs uint64, fracs float64) (FrameTimestamp, error) {
	var t FrameTimestamp
	t.SetSeconds(secs)
	err := t.SetFractions(fracs)
	return t, err
}

// SetSeconds sets the whole-seconds part of the timestamp.
func (t *FrameTimestamp) SetSeconds(secs uint64) { t.seconds = secs }

// SetFractions sets the fractional part of the timestamp.
func (t *FrameTimestamp) SetFractions(fracs float64) error {
	if fracs >= 1.0 || fracs < 0.0 {
		return errors.New("timestamp fractions out of bounds; must be in [0,1)")
	}
	t.fractions = fracs
	return nil
}

// Seconds returns the whole-seconds part of the timestamp.
func (t FrameTimestamp) Seconds() uint64 { return t.seconds }

// Fractions returns the fractional part of the timestamp.
func (t FrameTimestamp) Fractions() float64 { return t.fractions }

// Valid reports whether the timestamp carries actual data. Zero seconds
// means no timestamp was provided.
func (t FrameTimestamp) Valid() bool { return t.seconds != 0 }

// FrameBitrate holds the downlink bitrate in bits per second as supplied by
// the transport layer for one inbound frame. Like FrameTimestamp it is
// metadata, not wire content.
//
// Validity is tracked explicitly: the zero value is unknown, and a bitrate
// is Valid only once set through NewFrameBitrate or SetBitrate.
type FrameBitrate struct {
	bps   float64
	known bool
}

// NewFrameBitrate returns a valid bitrate of rate bits per second.
func NewFrameBitrate(rate float64) FrameBitrate {
	return FrameBitrate{bps: rate, known: true}
}

// SetBitrate sets the bitrate in bits per second and marks it valid.
func (b *FrameBitrate) SetBitrate(rate float64) {
	b.bps = rate
	b.known = true
}

// Bitrate returns the bitrate in bits per second.
func (b FrameBitrate) Bitrate() float64 { return b.bps }

// Valid reports whether a bitrate has been provided.
func (b FrameBitrate) Valid() bool { return b.known }
