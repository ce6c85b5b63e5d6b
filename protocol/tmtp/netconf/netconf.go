/*
NAME
  netconf.go - network protocol configurations: the strategy a virtual
  channel uses to recognise and delimit the packets in its data fields.

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

// Package netconf defines the network protocol configuration used by TMTP
// virtual channels to identify idle packets and read packet lengths from
// header bytes, together with the stock configurations: the all-idle
// default, a 2-byte test protocol and a CCSDS space packet layout.
package netconf

import "fmt"

// Conf is the capability set a virtual channel needs from a network
// protocol: idle detection, header delimiting, length extraction, idle and
// test packet generation, and a debug rendering of a packet.
type Conf interface {
	// IsIdlePacket reports whether the first header byte marks an idle packet.
	IsIdlePacket(firstByte byte) bool

	// PacketHeaderLength returns the header length in bytes implied by the
	// first header byte.
	PacketHeaderLength(firstByte byte) int

	// ExtractPacketLength returns the total packet length in bytes encoded
	// in a complete header.
	ExtractPacketLength(header []byte) int

	// GenIdlePacket returns one byte of idle packet filler.
	GenIdlePacket() byte

	// GenTestPacket wraps msg in this protocol's packet framing.
	GenTestPacket(msg []byte) []byte

	// Describe renders a packet for debug logging.
	Describe(packet []byte) string
}

// Idle is the fallback configuration owned by every virtual channel: it
// treats every byte as a one-byte idle packet, so nothing bad can happen
// before a real protocol is configured.
type Idle struct{}

// IsIdlePacket always reports true; the Idle configuration knows no
// other packets.
func (Idle) IsIdlePacket(firstByte byte) bool { return true }

// PacketHeaderLength returns 1; idle packets are all header.
func (Idle) PacketHeaderLength(firstByte byte) int { return 1 }

// ExtractPacketLength returns 1; idle packets have a length of 1.
func (Idle) ExtractPacketLength(header []byte) int { return 1 }

// GenIdlePacket returns an asterisk; the actual idle content is unimportant.
func (Idle) GenIdlePacket() byte { return '*' }

// GenTestPacket returns msg unframed; the Idle configuration has no
// packet structure to add.
func (Idle) GenTestPacket(msg []byte) []byte { return msg }

// Describe renders packet assuming it is idle filler.
func (Idle) Describe(packet []byte) string {
	return fmt.Sprintf("IdlePacket[%d] Content: %q", len(packet), packet)
}
