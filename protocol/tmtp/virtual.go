/*
NAME
  virtual.go - per-virtual-channel packet multiplexing: the send FIFO that
  fills outgoing data fields and the receive state machine that reassembles
  packets by following the first header pointer.

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

import (
	"strconv"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/tmtp/protocol/tmtp/netconf"
)

// DirectSendFunc produces exactly dataFieldLength bytes of raw data field
// for one outgoing frame when direct data field access is active.
type DirectSendFunc func(dataFieldLength int, t FrameTimestamp) []byte

// DirectReceiveFunc consumes the whole data field of one received frame
// when direct data field access is active.
type DirectReceiveFunc func(dataField []byte, t FrameTimestamp)

// VirtualChannel multiplexes one packet stream onto TM transfer frames.
// On the send side it buffers whole packets and cuts them into data fields,
// letting a packet span frames; on the receive side it walks received data
// fields, reassembles packets and queues them, time-tagged, for retrieval.
//
// Virtual channels are created through MasterChannel.CreateVirtualChannel
// and hold no reference back to their parent; master channel attributes
// are passed in per call.
type VirtualChannel struct {
	id                    uint8
	secondHeaderPresent   bool
	extendedFrameCount    bool
	dataFieldSynchronised bool
	directAccess          bool
	debug                 bool

	conf        netconf.Conf // Active protocol configuration.
	defaultConf netconf.Conf // Owned fallback; active unless overridden.

	packetSink PacketSink
	directSend DirectSendFunc
	directRecv DirectReceiveFunc

	sendFifo   [][]byte
	sendCursor int // Byte offset into the head packet of sendFifo.
	recFifo    []TimeTaggedPacket

	sendFrameCount uint64
	recFrameCount  uint64

	// Reassembly state: the partial packet, its header length once the
	// first byte has been seen, its total length once the header is
	// complete, and the pending time tag.
	recPacket             []byte
	recPacketHeaderLength int
	recPacketLength       int
	recPacketTimestamp    FrameTimestamp
	recPacketBitrate      FrameBitrate

	log logging.Logger
}

// newVirtualChannel returns a virtual channel with the given VCID. The
// initial protocol configuration considers all packets idle, and the data
// field framing defaults to byte-synchronised forward-ordered.
func newVirtualChannel(id uint8, log logging.Logger) (*VirtualChannel, error) {
	if id >= numVirtualChannels {
		return nil, vcErrorf(id, "virtual channel ID out of range (0-7)")
	}
	def := netconf.Idle{}
	return &VirtualChannel{
		id:                    id,
		dataFieldSynchronised: true,
		conf:                  def,
		defaultConf:           def,
		log:                   log,
	}, nil
}

// VirtualChannelID returns the virtual channel identifier.
func (vc *VirtualChannel) VirtualChannelID() uint8 { return vc.id }

// SendFrameCount returns the transmitted frame counter.
func (vc *VirtualChannel) SendFrameCount() uint64 { return vc.sendFrameCount }

// RecFrameCount returns the next expected received frame count.
func (vc *VirtualChannel) RecFrameCount() uint64 { return vc.recFrameCount }

// ActivateSecondHeader enables the secondary header on frames of this channel.
func (vc *VirtualChannel) ActivateSecondHeader() { vc.secondHeaderPresent = true }

// DeactivateSecondHeader disables the secondary header, unless the extended
// frame counter still claims it.
func (vc *VirtualChannel) DeactivateSecondHeader() error {
	if vc.extendedFrameCount {
		return vcErrorf(vc.id, "second header in use by extended frame count")
	}
	vc.secondHeaderPresent = false
	return nil
}

// SecondHeaderPresent returns the value of the secondary header flag.
func (vc *VirtualChannel) SecondHeaderPresent() bool { return vc.secondHeaderPresent }

// ActivateExtendedFrameCount switches the channel to the 32-bit frame
// counter, which travels in the secondary header.
func (vc *VirtualChannel) ActivateExtendedFrameCount() {
	vc.secondHeaderPresent = true
	vc.extendedFrameCount = true
}

// DeactivateExtendedFrameCount reverts to the mod-256 frame counter and
// releases the secondary header.
func (vc *VirtualChannel) DeactivateExtendedFrameCount() {
	vc.secondHeaderPresent = false
	vc.extendedFrameCount = false
}

// ExtendedFrameCount returns the value of the extended frame counter flag.
func (vc *VirtualChannel) ExtendedFrameCount() bool { return vc.extendedFrameCount }

// ActivateDataFieldSynchronisation selects byte-synchronised forward-ordered
// packet framing (the default).
func (vc *VirtualChannel) ActivateDataFieldSynchronisation() { vc.dataFieldSynchronised = true }

// DeactivateDataFieldSynchronisation deselects byte-synchronised framing.
func (vc *VirtualChannel) DeactivateDataFieldSynchronisation() { vc.dataFieldSynchronised = false }

// DataFieldSynchronised returns the value of the synchronisation setting.
func (vc *VirtualChannel) DataFieldSynchronised() bool { return vc.dataFieldSynchronised }

// ActivateDirectDataFieldAccess bypasses packet framing: data fields are
// produced and consumed whole by the connected direct access functions.
func (vc *VirtualChannel) ActivateDirectDataFieldAccess() { vc.directAccess = true }

// DeactivateDirectDataFieldAccess reverts to packet framing.
func (vc *VirtualChannel) DeactivateDirectDataFieldAccess() { vc.directAccess = false }

// DirectDataFieldAccess returns the value of the direct access flag.
func (vc *VirtualChannel) DirectDataFieldAccess() bool { return vc.directAccess }

// ActivateDebugOutput enables debug logging of frames and packets on this
// channel.
func (vc *VirtualChannel) ActivateDebugOutput() { vc.debug = true }

// DeactivateDebugOutput disables debug logging on this channel.
func (vc *VirtualChannel) DeactivateDebugOutput() { vc.debug = false }

// SetNetProtConf installs conf as the active protocol configuration. A nil
// conf restores the channel's owned all-idle default.
func (vc *VirtualChannel) SetNetProtConf(conf netconf.Conf) {
	if conf == nil {
		vc.conf = vc.defaultConf
		return
	}
	vc.conf = conf
}

// ConnectPacketSink establishes sink as the notification target for
// reassembled packets.
func (vc *VirtualChannel) ConnectPacketSink(sink PacketSink) { vc.packetSink = sink }

// DisconnectPacketSink removes the packet sink.
func (vc *VirtualChannel) DisconnectPacketSink() { vc.packetSink = nil }

// ConnectDirectSendFunc installs the function producing raw data fields in
// direct access mode.
func (vc *VirtualChannel) ConnectDirectSendFunc(f DirectSendFunc) { vc.directSend = f }

// ConnectDirectReceiveFunc installs the function consuming raw data fields
// in direct access mode.
func (vc *VirtualChannel) ConnectDirectReceiveFunc(f DirectReceiveFunc) { vc.directRecv = f }

// SendPacket places a whole packet in the output queue.
func (vc *VirtualChannel) SendPacket(packet []byte) error {
	if len(vc.sendFifo) >= sendPacketBufferSize {
		return vcErrorf(vc.id, "packet buffer overflow")
	}
	vc.sendFifo = append(vc.sendFifo, packet)
	return nil
}

// ReceivePacket retrieves the oldest reassembled packet, with its time tag,
// from the input queue.
func (vc *VirtualChannel) ReceivePacket() (TimeTaggedPacket, error) {
	if !vc.PacketAvailable() {
		return TimeTaggedPacket{}, vcErrorf(vc.id, "no packet available")
	}
	p := vc.recFifo[0]
	vc.recFifo = vc.recFifo[1:]
	return p, nil
}

// FrameAvailable reports whether the channel can fill a frame: always in
// direct access mode, otherwise whenever the output queue is non-empty.
func (vc *VirtualChannel) FrameAvailable() bool {
	if vc.directAccess {
		return true
	}
	return len(vc.sendFifo) > 0
}

// PacketAvailable reports whether the input queue holds a packet.
func (vc *VirtualChannel) PacketAvailable() bool { return len(vc.recFifo) > 0 }

// receiveFrame consumes the data field of an unwrapped frame, updating the
// reassembly state and queueing any completed packets. Anomalies accumulate
// in the returned warning; the error is reserved for fatal direct access
// misconfiguration.
func (vc *VirtualChannel) receiveFrame(frame *Frame) (ChannelWarning, error) {
	var warning ChannelWarning

	// Frame setting consistency against the channel configuration. A
	// mismatch aborts processing with no data extracted.
	switch {
	case frame.VirtualChannelID() != vc.id:
		warning.setWrongVcid()
		return warning, nil
	case frame.SecondHeaderPresent() != vc.secondHeaderPresent:
		warning.setWrongSecondHeaderFlag()
		return warning, nil
	case frame.DataFieldSynchronised() != vc.dataFieldSynchronised:
		warning.setWrongSynchronisationFlag()
		return warning, nil
	}

	if vc.extendedFrameCount {
		// Fold the three counter bytes in the secondary header back into
		// the 32-bit frame count.
		err := frame.ActivateExtendedVcFrameCount()
		if err != nil {
			warning.addFrameUnwrapError(err.Error())
		}
	}

	if vc.debug {
		vc.log.Debug("received frame",
			"length", frame.Length(),
			"vcid", frame.VirtualChannelID(),
			"ocf", frame.OcfPresent(),
			"mcfc", frame.MasterChannelFrameCount(),
			"vcfc", frame.VirtualChannelFrameCount(),
			"fhp", frame.FirstHeaderPointer())
	}

	modulus := uint64(256)
	if vc.extendedFrameCount {
		modulus = 1 << 32
	}
	if vc.recFrameCount == frame.VirtualChannelFrameCount() {
		vc.recFrameCount = (vc.recFrameCount + 1) % modulus
	} else {
		// A frame count gap invalidates any packet under reassembly.
		vc.resetRecPacket()
		warning.addVCLostFramesCount((frame.VirtualChannelFrameCount() - vc.recFrameCount + modulus) % modulus)
		vc.recFrameCount = (frame.VirtualChannelFrameCount() + 1) % modulus
	}

	if frame.FirstHeaderPointer() == FHPOnlyIdleData {
		return warning, nil
	}

	data, err := frame.DataField()
	if err != nil {
		warning.addFrameUnwrapError(err.Error())
		return warning, nil
	}

	if vc.directAccess {
		if vc.directRecv == nil {
			return warning, vcErrorf(vc.id, "direct data field access configured but corresponding receive function not connected")
		}
		vc.directRecv(data, frame.Timestamp())
		return warning, nil
	}

	// Position of the first packet header in the data field; past the end
	// when the whole field is the continuation of a spanning packet.
	firstHeader := len(data)
	if frame.FirstHeaderPointer() != FHPNoFirstHeader {
		firstHeader = int(frame.FirstHeaderPointer())
	}

	for cursor := 0; cursor < len(data); {
		switch {
		case len(vc.recPacket) == 0:
			// Expecting the start of a packet.
			if cursor < firstHeader {
				// These continuation bytes belong to a packet whose start
				// was lost; skip to the first header.
				cursor = firstHeader
				warning.setPacketResynced()
				continue
			}
			if vc.conf.IsIdlePacket(data[cursor]) {
				cursor++
				continue
			}
			vc.recPacketHeaderLength = vc.conf.PacketHeaderLength(data[cursor])
			vc.recPacket = append(vc.recPacket, data[cursor])
			if frame.Timestamp().Valid() && frame.Bitrate().Valid() {
				vc.recPacketTimestamp = packetTimestamp(frame, cursor)
				vc.recPacketBitrate = frame.Bitrate()
			}
			cursor++

		case len(vc.recPacket) < vc.recPacketHeaderLength:
			// Still within the packet header.
			vc.recPacket = append(vc.recPacket, data[cursor])
			cursor++
			if len(vc.recPacket) == vc.recPacketHeaderLength {
				vc.recPacketLength = vc.conf.ExtractPacketLength(vc.recPacket)
			}

		default:
			// Within the packet body.
			if cursor == firstHeader {
				// A new packet starts here while one is still under
				// reassembly; the in-flight packet cannot be completed.
				vc.resetRecPacket()
				warning.setPacketResynced()
				continue
			}
			vc.recPacket = append(vc.recPacket, data[cursor])
			cursor++
			if len(vc.recPacket) == vc.recPacketLength {
				if len(vc.recFifo) < recPacketBufferSize {
					p := TimeTaggedPacket{
						Data:      vc.recPacket,
						Timestamp: vc.recPacketTimestamp,
						Bitrate:   vc.recPacketBitrate,
					}
					vc.recFifo = append(vc.recFifo, p)
					if vc.debug {
						vc.log.Debug("received packet", "vcid", vc.id, "packet", vc.conf.Describe(p.Data))
					}
					vc.resetRecPacket()
					warning.Merge(vc.signalNewPacket())
				} else {
					warning.setRecPacketBufferOverflow()
					vc.resetRecPacket()
				}
			}
		}
	}
	return warning, nil
}

// resetRecPacket discards the reassembly state, including any pending time
// tag.
func (vc *VirtualChannel) resetRecPacket() {
	vc.recPacket = nil
	vc.recPacketHeaderLength = 0
	vc.recPacketLength = 0
	vc.recPacketTimestamp = FrameTimestamp{}
	vc.recPacketBitrate = FrameBitrate{}
}

// packetTimestamp estimates the transmission time of a packet whose header
// starts at offset within the frame's data field: the frame reference time
// plus the serialisation delay, at the frame's reference bitrate, of the
// primary header, SecondHeaderLength() bytes and offset data field bytes.
// SecondHeaderLength() is at least 1, so one byte is counted even for a
// frame without a secondary header.
func packetTimestamp(frame *Frame, offset int) FrameTimestamp {
	delay := float64((primaryHeaderLength+frame.SecondHeaderLength()+offset)*8) / frame.Bitrate().Bitrate()
	raw := frame.Timestamp().Fractions() + delay

	var t FrameTimestamp
	t.SetSeconds(frame.Timestamp().Seconds() + uint64(raw))
	t.SetFractions(raw - float64(uint64(raw)))
	return t
}

// buildFrame creates one outgoing frame for this channel. The master
// channel supplies its own attributes: total frame length and the OCF and
// FECF policies. The data field is cut from the send FIFO, topped up with
// idle filler, or in direct access mode produced whole by the connected
// send function.
func (vc *VirtualChannel) buildFrame(t FrameTimestamp, length int, ocf, fecf bool) (*Frame, error) {
	frame, err := NewFrame(length)
	if err != nil {
		return nil, vcErrorf(vc.id, "error in transfer frame: %v", err)
	}
	err = frame.SetVirtualChannelID(vc.id)
	if err != nil {
		return nil, vcErrorf(vc.id, "error in transfer frame: %v", err)
	}
	if ocf {
		frame.ActivateOcf()
	}
	if fecf {
		frame.ActivateFecf()
	}
	if vc.secondHeaderPresent {
		frame.ActivateSecondHeader()
	}
	if vc.extendedFrameCount {
		err = frame.ActivateExtendedVcFrameCount()
		if err != nil {
			return nil, vcErrorf(vc.id, "error in transfer frame: %v", err)
		}
	}
	if vc.dataFieldSynchronised {
		frame.ActivateDataFieldSynchronisation()
	}
	err = frame.SetVirtualChannelFrameCount(vc.sendFrameCount)
	if err != nil {
		return nil, vcErrorf(vc.id, "error in transfer frame: %v", err)
	}

	dataFieldLength := frame.DataFieldLength()
	if dataFieldLength < 1 {
		return nil, vcErrorf(vc.id, "frame too short to carry all configured information")
	}

	var data []byte
	fhp := uint16(FHPNoFirstHeader)

	if vc.directAccess {
		fhp = 0
		if vc.directSend == nil {
			return nil, vcErrorf(vc.id, "direct data field access configured but corresponding send function not connected")
		}
		data = vc.directSend(dataFieldLength, t)
		if len(data) != dataFieldLength {
			return nil, vcErrorf(vc.id, "direct data field access function returned data field of wrong size")
		}
	} else {
		data = make([]byte, 0, dataFieldLength)
		for len(data) < dataFieldLength {
			need := dataFieldLength - len(data)

			if len(vc.sendFifo) == 0 {
				// Nothing queued: top up with idle filler. The first header
				// pointer lands on the filler when a packet tail precedes
				// it, or flags an idle-only data field.
				if fhp == FHPNoFirstHeader {
					if len(data) != 0 {
						fhp = uint16(len(data))
					} else {
						fhp = FHPOnlyIdleData
					}
				}
				data = append(data, vc.conf.GenIdlePacket())
				continue
			}

			head := vc.sendFifo[0]
			avail := len(head) - vc.sendCursor
			if vc.sendCursor == 0 && fhp == FHPNoFirstHeader {
				fhp = uint16(len(data))
			}
			if avail > need {
				// The head packet overflows this frame; it continues in the
				// next one from the send cursor.
				data = append(data, head[vc.sendCursor:vc.sendCursor+need]...)
				vc.sendCursor += need
			} else {
				data = append(data, head[vc.sendCursor:]...)
				vc.sendFifo = vc.sendFifo[1:]
				vc.sendCursor = 0
			}
		}
	}

	err = frame.SetFirstHeaderPointer(fhp)
	if err != nil {
		return nil, vcErrorf(vc.id, "error in transfer frame: %v", err)
	}
	err = frame.SetDataField(data)
	if err != nil {
		return nil, vcErrorf(vc.id, "error in transfer frame: %v", err)
	}

	if vc.extendedFrameCount {
		vc.sendFrameCount = (vc.sendFrameCount + 1) % (1 << 32)
	} else {
		vc.sendFrameCount = (vc.sendFrameCount + 1) % 256
	}

	if vc.debug {
		vc.log.Debug("built frame",
			"length", frame.Length(),
			"vcid", frame.VirtualChannelID(),
			"vcfc", frame.VirtualChannelFrameCount(),
			"fhp", frame.FirstHeaderPointer())
	}
	return frame, nil
}

// signalNewPacket notifies the packet sink of a newly queued packet.
func (vc *VirtualChannel) signalNewPacket() ChannelWarning {
	var warning ChannelWarning
	if vc.packetSink == nil {
		warning.setNoPacketSinkSpecified()
		return warning
	}
	err := vc.packetSink.SignalNewPacket()
	if err != nil {
		warning.appendFreeMessage("error in packet sink connected to VC " + strconv.Itoa(int(vc.id)) + ": " + err.Error())
	}
	return warning
}
