/*
NAME
  spacepacket.go

DESCRIPTION
  spacepacket.go provides a CCSDS space packet protocol configuration with
  the standard 6-byte packet header.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package netconf

import "fmt"

// Space packet constants. The 6-byte header carries packet ID, sequence
// control and a length field holding the data length minus one.
const (
	spaceIdleVersion  = 1
	spaceIdleByte     = 0x20
	spaceHeaderLength = 6
)

// SpacePacket is a CCSDS space packet protocol configuration.
type SpacePacket struct{}

// IsIdlePacket reports whether the version bits of the first header byte
// mark an idle packet.
func (SpacePacket) IsIdlePacket(firstByte byte) bool {
	return (firstByte>>5)&0x07 == spaceIdleVersion
}

// PacketHeaderLength returns the fixed 6-byte header length.
func (SpacePacket) PacketHeaderLength(firstByte byte) int { return spaceHeaderLength }

// ExtractPacketLength returns the total packet length: the length field in
// header bytes 4..5 (data length minus one) plus one plus the header length.
func (SpacePacket) ExtractPacketLength(header []byte) int {
	return int(uint16(header[4])<<8|uint16(header[5])) + 1 + spaceHeaderLength
}

// GenIdlePacket returns the idle filler byte 0x20.
func (SpacePacket) GenIdlePacket() byte { return spaceIdleByte }

// GenTestPacket prepends a 6-byte space packet header to msg: zero packet
// ID and sequence control except for a fixed grouping pattern, and the
// data length minus one in the trailing two header bytes.
func (SpacePacket) GenTestPacket(msg []byte) []byte {
	dataSize := uint16(len(msg) - 1)

	packet := make([]byte, 0, len(msg)+spaceHeaderLength)
	packet = append(packet, 0x00, 0x00, 0xc0, 0x00, byte(dataSize>>8), byte(dataSize))
	packet = append(packet, msg...)
	return packet
}

// Describe renders a space packet with the fields of its packet ID and
// sequence control.
func (SpacePacket) Describe(packet []byte) string {
	if len(packet) < spaceHeaderLength {
		return fmt.Sprintf("SpacePacket[%d] short packet", len(packet))
	}
	id := uint16(packet[0])<<8 | uint16(packet[1])
	seq := uint16(packet[2])<<8 | uint16(packet[3])
	length := int(uint16(packet[4])<<8|uint16(packet[5])) + 1 + spaceHeaderLength

	version := (id >> 13) & 0x0007
	typ := (id >> 12) & 0x0001
	apid := id & 0x07ff
	grouping := (seq >> 14) & 0x0003
	ssc := seq & 0x3fff

	if len(packet) < length {
		return fmt.Sprintf("SpacePacket[%d] Ver: %d, short packet (want %d)", len(packet), version, length)
	}
	return fmt.Sprintf("SpacePacket[%d] Ver: %d, Typ: %d, APID: %d, GF: %d, SSC: %d, Content: %q",
		length, version, typ, apid, grouping, ssc, packet[spaceHeaderLength:length])
}
