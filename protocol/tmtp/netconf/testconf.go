/*
NAME
  testconf.go

DESCRIPTION
  testconf.go provides a minimal 2-byte-header protocol configuration used
  for loopback and bench testing of TMTP channels.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package netconf

import "fmt"

// Test protocol constants. The 2-byte header is version(3 bits) followed
// by the total packet length (13 bits), so packets beyond 8191 bytes are
// not representable.
const (
	testIdleVersion  = 0    // Version pattern marking an idle packet.
	testVersion      = 2    // Version pattern marking a test packet.
	testIdleByte     = 0x1f // Idle packet content (version 0, all-ones tail).
	testHeaderLength = 2
)

// Test is a 2-byte-header protocol configuration: version(3b)|length(13b).
type Test struct{}

// IsIdlePacket reports whether the version bits of the first header byte
// mark an idle packet.
func (Test) IsIdlePacket(firstByte byte) bool {
	return (firstByte>>5)&0x07 == testIdleVersion
}

// PacketHeaderLength returns the fixed 2-byte header length.
func (Test) PacketHeaderLength(firstByte byte) int { return testHeaderLength }

// ExtractPacketLength returns the total packet length from the 13 least
// significant header bits.
func (Test) ExtractPacketLength(header []byte) int {
	return int(uint16(header[0])<<8|uint16(header[1])) & 0x1fff
}

// GenIdlePacket returns the idle filler byte 0x1f.
func (Test) GenIdlePacket() byte { return testIdleByte }

// GenTestPacket prepends the 2-byte header to msg: the test version in the
// top 3 bits and the total packet length in the remaining 13.
func (Test) GenTestPacket(msg []byte) []byte {
	var header uint16
	header |= (testVersion & 0x0007) << 13
	header |= uint16(len(msg)+testHeaderLength) & 0x1fff

	packet := make([]byte, 0, len(msg)+testHeaderLength)
	packet = append(packet, byte(header>>8), byte(header))
	packet = append(packet, msg...)
	return packet
}

// Describe renders a test packet with its version, length and content.
func (Test) Describe(packet []byte) string {
	if len(packet) < testHeaderLength {
		return fmt.Sprintf("TestPacket[%d] short packet", len(packet))
	}
	header := uint16(packet[0])<<8 | uint16(packet[1])
	version := (header >> 13) & 0x0007
	length := int(header & 0x1fff)
	if len(packet) < length {
		return fmt.Sprintf("TestPacket[%d] Ver: %d, short packet (want %d)", len(packet), version, length)
	}
	return fmt.Sprintf("TestPacket[%d] Ver: %d, Content: %q", length, version, packet[testHeaderLength:length])
}
