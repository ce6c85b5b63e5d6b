/*
NAME
  physical.go - the physical channel: the entry point of the TMTP stack,
  holding the fixed frame length and FECF policy and converting between
  raw byte buffers and the channel tree.

DESCRIPTION
  See Readme.md

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tmtp

import "github.com/ausocean/utils/logging"

// PhysicalChannel is the root of a TMTP channel tree: one space link with
// a fixed frame length and an all-or-nothing FECF policy, owning at most
// one master channel. Raw frames go out through SendFrame and come in
// through ReceiveFrame.
//
// The channel tree is single-threaded: every method completes on the
// caller's goroutine, and concurrent use requires external locking over
// the whole tree.
type PhysicalChannel struct {
	frameLength   int
	fecfPresent   bool
	masterChannel *MasterChannel
	log           logging.Logger
}

// NewPhysicalChannel returns a physical channel for frames of the given
// total length in bytes, which must be in [MinFrameLength,MaxFrameLength].
func NewPhysicalChannel(length int, log logging.Logger, options ...func(*PhysicalChannel) error) (*PhysicalChannel, error) {
	if length < MinFrameLength || length > MaxFrameLength {
		return nil, pcErrorf("frame length out of range (%d-%d)", MinFrameLength, MaxFrameLength)
	}
	pc := &PhysicalChannel{frameLength: length, log: log}
	for _, option := range options {
		err := option(pc)
		if err != nil {
			return nil, pcErrorf("option could not be applied: %v", err)
		}
	}
	log.Debug("physical channel created", "frameLength", length, "fecf", pc.fecfPresent)
	return pc, nil
}

// FECF is an option for NewPhysicalChannel enabling the frame error
// control field, i.e. a CRC-16 trailer on every frame of this channel.
func FECF(pc *PhysicalChannel) error {
	pc.ActivateFecf()
	return nil
}

// FrameLength returns the fixed total frame length in bytes.
func (pc *PhysicalChannel) FrameLength() int { return pc.frameLength }

// ActivateFecf enables the frame error control field on this channel.
func (pc *PhysicalChannel) ActivateFecf() { pc.fecfPresent = true }

// DeactivateFecf disables the frame error control field.
func (pc *PhysicalChannel) DeactivateFecf() { pc.fecfPresent = false }

// FecfPresent returns the value of the FECF policy.
func (pc *PhysicalChannel) FecfPresent() bool { return pc.fecfPresent }

// CreateMasterChannel creates the master channel for the given spacecraft
// ID, replacing any existing one.
func (pc *PhysicalChannel) CreateMasterChannel(scid uint16) (*MasterChannel, error) {
	mc, err := newMasterChannel(scid, pc.log)
	if err != nil {
		return nil, pcErrorf("error creating master channel: %v", err)
	}
	pc.masterChannel = mc
	return mc, nil
}

// MasterChannel returns the master channel, or nil if none was created.
func (pc *PhysicalChannel) MasterChannel() *MasterChannel { return pc.masterChannel }

// ReceiveFrame unwraps one raw frame received with the given reference
// timestamp and bitrate and runs it through the channel tree. Structural
// and sequencing anomalies, including unwrap failures such as a bad
// checksum, are reported in the returned warning rather than as errors;
// the error is reserved for fatal channel misconfiguration.
func (pc *PhysicalChannel) ReceiveFrame(raw []byte, t FrameTimestamp, bitrate FrameBitrate) (ChannelWarning, error) {
	var warning ChannelWarning

	frame, err := NewFrame(pc.frameLength)
	if err != nil {
		return warning, pcErrorf("error in transfer frame: %v", err)
	}
	frame.SetTimestamp(t)
	frame.SetBitrate(bitrate)
	if pc.fecfPresent {
		frame.ActivateFecf()
	}

	err = frame.Unwrap(raw)
	if err != nil {
		warning.addFrameUnwrapError(err.Error())
		return warning, nil
	}

	if pc.masterChannel == nil {
		warning.setUnconfiguredMC()
		return warning, nil
	}
	mcWarning, err := pc.masterChannel.receiveFrame(frame)
	warning.Merge(mcWarning)
	return warning, err
}

// SendFrame obtains one scheduled frame from the master channel and wraps
// it into its raw bytes for transmission.
func (pc *PhysicalChannel) SendFrame(t FrameTimestamp) ([]byte, error) {
	if pc.masterChannel == nil {
		return nil, pcErrorf("no master channel defined and frame send request received")
	}

	frame, err := pc.masterChannel.sendFrame(t, pc.frameLength, pc.fecfPresent)
	if err != nil {
		return nil, pcErrorf("error in master channel: %v", err)
	}

	if frame.FecfPresent() != pc.fecfPresent {
		return nil, pcErrorf("received frame from master channel has wrong FECF setting")
	}
	if frame.Length() != pc.frameLength {
		return nil, pcErrorf("received frame from master channel has wrong frame length; it is %d and should be %d", frame.Length(), pc.frameLength)
	}

	raw, err := frame.Wrap()
	if err != nil {
		return nil, pcErrorf("error in transfer frame: %v", err)
	}
	return raw, nil
}
