/*
NAME
  master.go - the master channel: owns the virtual channels, schedules
  transmission round-robin between them, carries the OCF report queues and
  demultiplexes received frames.

DESCRIPTION
  See Readme.md

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tmtp

import "github.com/ausocean/utils/logging"

// defaultIdleChannel is the VCID reserved for idle frames unless
// reconfigured with SetIdleChannel.
const defaultIdleChannel = 7

// MasterChannel multiplexes up to eight virtual channels onto one
// spacecraft's frame stream. One virtual channel is reserved as the idle
// channel, supplying idle frames whenever no other channel has data. The
// master channel also owns the OCF report queues for both directions and
// the mod-256 master channel frame counters.
//
// Master channels are created through PhysicalChannel.CreateMasterChannel.
type MasterChannel struct {
	scid       uint16
	ocfPresent bool

	sendFrameCount uint8
	recFrameCount  uint8

	virtualChannels [numVirtualChannels]*VirtualChannel
	currentVc       uint8
	idleChannel     uint8

	sendOcfFifo []Ocf
	recOcfFifo  []Ocf
	ocfSink     OcfSink

	log logging.Logger
}

// newMasterChannel returns a master channel for the given spacecraft ID
// with the OCF enabled and an idle virtual channel at VCID 7.
func newMasterChannel(scid uint16, log logging.Logger) (*MasterChannel, error) {
	if scid >= 1024 {
		return nil, mcErrorf("spacecraft ID out of range (0-1023)")
	}
	mc := &MasterChannel{
		scid:        scid,
		ocfPresent:  true,
		idleChannel: defaultIdleChannel,
		log:         log,
	}
	idle, err := newVirtualChannel(mc.idleChannel, log)
	if err != nil {
		return nil, mcErrorf("error creating idle virtual channel: %v", err)
	}
	mc.virtualChannels[mc.idleChannel] = idle
	return mc, nil
}

// SpacecraftID returns the spacecraft identifier.
func (mc *MasterChannel) SpacecraftID() uint16 { return mc.scid }

// SendFrameCount returns the transmitted frame counter.
func (mc *MasterChannel) SendFrameCount() uint16 { return uint16(mc.sendFrameCount) }

// RecFrameCount returns the next expected received frame count.
func (mc *MasterChannel) RecFrameCount() uint16 { return uint16(mc.recFrameCount) }

// ActivateOcf enables the operational control field on this channel's frames.
func (mc *MasterChannel) ActivateOcf() { mc.ocfPresent = true }

// DeactivateOcf disables the operational control field.
func (mc *MasterChannel) DeactivateOcf() { mc.ocfPresent = false }

// OcfPresent returns the value of the OCF flag.
func (mc *MasterChannel) OcfPresent() bool { return mc.ocfPresent }

// SendOcf places an OCF report in the output queue for transmission in the
// next outgoing frame.
func (mc *MasterChannel) SendOcf(ocf Ocf) error {
	if len(mc.sendOcfFifo) >= sendOcfBufferSize {
		return mcErrorf("send OCF buffer overflow")
	}
	mc.sendOcfFifo = append(mc.sendOcfFifo, ocf)
	return nil
}

// ReceiveOcf retrieves the oldest received OCF report from the input queue.
func (mc *MasterChannel) ReceiveOcf() (Ocf, error) {
	if !mc.OcfAvailable() {
		return Ocf{}, mcErrorf("no OCF available")
	}
	ocf := mc.recOcfFifo[0]
	mc.recOcfFifo = mc.recOcfFifo[1:]
	return ocf, nil
}

// OcfAvailable reports whether the OCF input queue holds a report.
func (mc *MasterChannel) OcfAvailable() bool { return len(mc.recOcfFifo) > 0 }

// SetIdleChannel designates channel as the idle channel, creating a fresh
// virtual channel there and clearing the previous idle slot.
func (mc *MasterChannel) SetIdleChannel(channel uint8) error {
	if channel >= numVirtualChannels {
		return mcErrorf("virtual channel ID for idle channel out of range (0-7)")
	}
	idle, err := newVirtualChannel(channel, mc.log)
	if err != nil {
		return mcErrorf("error creating idle virtual channel: %v", err)
	}
	mc.virtualChannels[mc.idleChannel] = nil
	mc.idleChannel = channel
	mc.virtualChannels[channel] = idle
	return nil
}

// IdleChannel returns the VCID of the current idle channel.
func (mc *MasterChannel) IdleChannel() uint8 { return mc.idleChannel }

// IdleChannelObject returns the idle virtual channel itself.
func (mc *MasterChannel) IdleChannelObject() *VirtualChannel {
	return mc.virtualChannels[mc.idleChannel]
}

// FrameAvailable reports whether any virtual channel has a frame to send.
func (mc *MasterChannel) FrameAvailable() bool {
	for _, vc := range mc.virtualChannels {
		if vc != nil && vc.FrameAvailable() {
			return true
		}
	}
	return false
}

// CreateVirtualChannel creates a virtual channel with default settings at
// the given VCID, replacing any existing channel there. The idle channel
// slot cannot be claimed.
func (mc *MasterChannel) CreateVirtualChannel(vcid uint8) (*VirtualChannel, error) {
	if vcid >= numVirtualChannels {
		return nil, mcErrorf("virtual channel ID out of range (0-7)")
	}
	if vcid == mc.idleChannel {
		return nil, mcErrorf("virtual channel %d is already configured as idle channel", vcid)
	}
	vc, err := newVirtualChannel(vcid, mc.log)
	if err != nil {
		return nil, mcErrorf("error creating virtual channel %d: %v", vcid, err)
	}
	mc.virtualChannels[vcid] = vc
	return vc, nil
}

// DeleteVirtualChannel removes the virtual channel at the given VCID.
func (mc *MasterChannel) DeleteVirtualChannel(vcid uint8) error {
	if vcid >= numVirtualChannels {
		return mcErrorf("virtual channel ID out of range (0-7)")
	}
	mc.virtualChannels[vcid] = nil
	return nil
}

// VirtualChannel returns the virtual channel at the given VCID, or nil if
// none is configured.
func (mc *MasterChannel) VirtualChannel(vcid uint8) *VirtualChannel {
	if vcid >= numVirtualChannels {
		return nil
	}
	return mc.virtualChannels[vcid]
}

// ConnectOcfSink establishes sink as the notification target for received
// OCF reports.
func (mc *MasterChannel) ConnectOcfSink(sink OcfSink) { mc.ocfSink = sink }

// DisconnectOcfSink removes the OCF sink.
func (mc *MasterChannel) DisconnectOcfSink() { mc.ocfSink = nil }

// receiveFrame checks an unwrapped frame against the master channel
// settings, queues its OCF and hands it to the addressed virtual channel.
func (mc *MasterChannel) receiveFrame(frame *Frame) (ChannelWarning, error) {
	var warning ChannelWarning

	if frame.SpacecraftID() != mc.scid {
		warning.setWrongScid()
		return warning, nil
	}

	if uint16(mc.recFrameCount) == frame.MasterChannelFrameCount() {
		mc.recFrameCount++
	} else {
		warning.addMCLostFramesCount(uint64(frame.MasterChannelFrameCount()-uint16(mc.recFrameCount)+256) % 256)
		mc.recFrameCount = uint8(frame.MasterChannelFrameCount() + 1)
	}

	if mc.ocfPresent != frame.OcfPresent() {
		warning.setWrongOcfFlag()
	}
	if mc.ocfPresent && frame.OcfPresent() {
		if len(mc.recOcfFifo) < recOcfBufferSize {
			mc.recOcfFifo = append(mc.recOcfFifo, frame.Ocf())
			warning.Merge(mc.signalNewOcf())
		} else {
			warning.setRecOcfBufferOverflow()
		}
	}

	vcid := frame.VirtualChannelID()
	if mc.virtualChannels[vcid] == nil {
		warning.setUnconfiguredVC()
		return warning, nil
	}
	vcWarning, err := mc.virtualChannels[vcid].receiveFrame(frame)
	warning.Merge(vcWarning)
	return warning, err
}

// sendFrame schedules one outgoing frame round-robin across the configured
// virtual channels, falling back to the idle channel when none has data,
// then stamps the master channel settings and OCF onto it. The physical
// channel supplies its frame length and FECF policy.
func (mc *MasterChannel) sendFrame(t FrameTimestamp, length int, fecf bool) (*Frame, error) {
	var frame *Frame
	var err error

	// Round-robin: first configured, non-idle channel at or after the
	// cursor with a frame available wins, and the cursor moves past it.
	// The cursor is unchanged when the idle channel supplies the frame.
	vcid := mc.currentVc
	scheduled := false
	for i := uint8(0); i < numVirtualChannels; i++ {
		vcid = (mc.currentVc + i) % numVirtualChannels
		vc := mc.virtualChannels[vcid]
		if vc != nil && vcid != mc.idleChannel && vc.FrameAvailable() {
			frame, err = vc.buildFrame(t, length, mc.ocfPresent, fecf)
			scheduled = true
			break
		}
	}
	if !scheduled {
		frame, err = mc.virtualChannels[mc.idleChannel].buildFrame(t, length, mc.ocfPresent, fecf)
	}
	if err != nil {
		return nil, mcErrorf("error in virtual channel: %v", err)
	}
	mc.currentVc = (vcid + 1) % numVirtualChannels

	err = frame.SetSpacecraftID(mc.scid)
	if err != nil {
		return nil, mcErrorf("error in transfer frame: %v", err)
	}
	err = frame.SetMasterChannelFrameCount(uint16(mc.sendFrameCount))
	if err != nil {
		return nil, mcErrorf("error in transfer frame: %v", err)
	}

	if frame.OcfPresent() != mc.ocfPresent {
		return nil, mcErrorf("received frame from virtual channel has wrong OCF setting")
	}
	if mc.ocfPresent {
		var ocf Ocf
		if len(mc.sendOcfFifo) > 0 {
			ocf = mc.sendOcfFifo[0]
			mc.sendOcfFifo = mc.sendOcfFifo[1:]
		} else {
			// No report queued; an empty future-reserved report fills the slot.
			ocf.SetReportType(Type2FutureReserved)
		}
		frame.SetOcf(ocf)
	}

	mc.sendFrameCount++
	mc.log.Debug("frame scheduled", "scid", mc.scid, "vcid", frame.VirtualChannelID(), "mcfc", frame.MasterChannelFrameCount())
	return frame, nil
}

// signalNewOcf notifies the OCF sink of a newly queued report.
func (mc *MasterChannel) signalNewOcf() ChannelWarning {
	var warning ChannelWarning
	if mc.ocfSink == nil {
		warning.setNoOcfSinkSpecified()
		return warning
	}
	err := mc.ocfSink.SignalNewOcf()
	if err != nil {
		warning.appendFreeMessage("error in OCF sink connected to MC: " + err.Error())
	}
	return warning
}
