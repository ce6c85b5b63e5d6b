/*
NAME
  sink.go - notification interfaces through which the channel tree hands
  reassembled packets and OCF reports to the application.

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

// TimeTaggedPacket is a reassembled packet together with its estimated
// transmission timestamp and the bitrate that estimate was derived from.
// Timestamp and Bitrate are only Valid when the transport supplied valid
// reference values for the frame the packet header arrived in.
type TimeTaggedPacket struct {
	Data      []byte
	Timestamp FrameTimestamp
	Bitrate   FrameBitrate
}

// PacketSink is notified by a virtual channel whenever a completed packet
// has been enqueued; the packet is guaranteed to be retrievable with
// VirtualChannel.ReceivePacket before SignalNewPacket returns. An error is
// reported back to the caller as a free-form channel warning.
type PacketSink interface {
	SignalNewPacket() error
}

// OcfSink is notified by the master channel whenever an OCF report has
// been enqueued; the report is guaranteed to be retrievable with
// MasterChannel.ReceiveOcf before SignalNewOcf returns.
type OcfSink interface {
	SignalNewOcf() error
}
