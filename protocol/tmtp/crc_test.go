/*
NAME
  crc_test.go

DESCRIPTION
  crc_test.go provides testing for the frame error control field checksum.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tmtp

import "testing"

// TestCRCCheckValue checks the checksum of the standard CRC-16/CCITT-FALSE
// test message.
func TestCRCCheckValue(t *testing.T) {
	const expect = 0x29b1
	got := crc([]byte("123456789"))
	if got != expect {
		t.Errorf("unexpected checksum. Got: %#x\n Want: %#x\n", got, expect)
	}
}

// TestCRCSelfCheck checks that a message with its own checksum appended
// always sums to zero, the property frame reception relies on.
func TestCRCSelfCheck(t *testing.T) {
	msgs := [][]byte{
		[]byte("123456789"),
		{0x00},
		{0xff, 0xff, 0xff},
		[]byte("the quick brown fox jumps over the lazy dog"),
	}
	for _, msg := range msgs {
		sum := crc(msg)
		withSum := append(append([]byte(nil), msg...), byte(sum>>8), byte(sum))
		if got := crc(withSum); got != 0 {
			t.Errorf("checksum of message with appended FECF not zero for %q. Got: %#x\n", msg, got)
		}
	}
}
