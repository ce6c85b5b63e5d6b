/*
NAME
  tmtp.go - package documentation and constants shared across the TMTP
  channel tree.

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

// Package tmtp implements the ECSS-E-ST-50-03C Telemetry Transfer Protocol:
// fixed-length TM transfer frames multiplexing up to eight virtual channel
// packet streams onto one master channel, with optional secondary header,
// operational control field and CRC-16 frame error control field.
//
// A PhysicalChannel owns one MasterChannel which owns the VirtualChannels;
// packets go in via VirtualChannel.SendPacket, frames come out via
// PhysicalChannel.SendFrame, and the receive direction runs the same tree
// in reverse, reporting per-frame anomalies as non-fatal ChannelWarnings.
package tmtp

// Frame geometry limits from ECSS-E-ST-50-03C.
const (
	MinFrameLength = 7    // Smallest legal TM transfer frame in bytes.
	MaxFrameLength = 2048 // Largest legal TM transfer frame in bytes.
)

const (
	primaryHeaderLength = 6 // The primary header is always 6 bytes.
	fecfLength          = 2 // The frame error control field is 2 bytes.
)

// Bounds on the channel FIFOs. An enqueue beyond these limits is an error
// on the send side and a dropped-item warning on the receive side.
const (
	sendPacketBufferSize = 100
	recPacketBufferSize  = 100
	sendOcfBufferSize    = 100
	recOcfBufferSize     = 100
)

// numVirtualChannels is fixed by the 3-bit VCID field.
const numVirtualChannels = 8
