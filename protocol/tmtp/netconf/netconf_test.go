/*
NAME
  netconf_test.go

DESCRIPTION
  netconf_test.go provides testing for the stock network protocol
  configurations.

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

import (
	"bytes"
	"testing"
)

// TestIdleConf checks the behaviour of the all-idle fallback configuration.
func TestIdleConf(t *testing.T) {
	var c Conf = Idle{}
	if !c.IsIdlePacket(0x00) || !c.IsIdlePacket(0xff) {
		t.Error("expected every byte to be idle")
	}
	if got := c.PacketHeaderLength(0x00); got != 1 {
		t.Errorf("unexpected header length. Got: %v\n Want: 1\n", got)
	}
	if got := c.ExtractPacketLength([]byte{0x42}); got != 1 {
		t.Errorf("unexpected packet length. Got: %v\n Want: 1\n", got)
	}
	if got := c.GenIdlePacket(); got != '*' {
		t.Errorf("unexpected idle byte. Got: %#x\n Want: '*'\n", got)
	}
}

// TestTestConfPacket checks test packet generation and the symmetric
// header extraction.
func TestTestConfPacket(t *testing.T) {
	var c Conf = Test{}
	msg := []byte("telemetry!")
	packet := c.GenTestPacket(msg)

	if want := []byte{0x40, 0x0c}; !bytes.Equal(packet[:2], want) {
		t.Errorf("unexpected header. Got: %#v\n Want: %#v\n", packet[:2], want)
	}
	if !bytes.Equal(packet[2:], msg) {
		t.Error("message not carried through")
	}
	if c.IsIdlePacket(packet[0]) {
		t.Error("test packet mistaken for idle")
	}
	if !c.IsIdlePacket(c.GenIdlePacket()) {
		t.Error("idle byte not recognised as idle")
	}
	if got := c.PacketHeaderLength(packet[0]); got != 2 {
		t.Errorf("unexpected header length. Got: %v\n Want: 2\n", got)
	}
	if got := c.ExtractPacketLength(packet[:2]); got != len(packet) {
		t.Errorf("unexpected packet length. Got: %v\n Want: %v\n", got, len(packet))
	}
}

// TestSpacePacketConf checks space packet generation and the symmetric
// header extraction.
func TestSpacePacketConf(t *testing.T) {
	var c Conf = SpacePacket{}
	msg := []byte("hello space")
	packet := c.GenTestPacket(msg)

	if got := c.PacketHeaderLength(packet[0]); got != 6 {
		t.Errorf("unexpected header length. Got: %v\n Want: 6\n", got)
	}
	if got, want := c.ExtractPacketLength(packet[:6]), len(msg)+6; got != want {
		t.Errorf("unexpected packet length. Got: %v\n Want: %v\n", got, want)
	}
	if c.IsIdlePacket(packet[0]) {
		t.Error("space packet mistaken for idle")
	}
	if !c.IsIdlePacket(c.GenIdlePacket()) {
		t.Error("idle byte not recognised as idle")
	}
	if !bytes.Equal(packet[6:], msg) {
		t.Error("message not carried through")
	}
}
