/*
NAME
  crc.go

DESCRIPTION
  See Readme.md

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

// crc computes the frame error control field checksum over msg: generator
// polynomial X^16+X^12+X^5+1 (0x1021), shift register preset to 0xFFFF,
// MSB first, no final XOR. A frame received intact with its FECF appended
// yields crc == 0.
func crc(msg []byte) uint16 {
	sr := uint16(0xffff)
	for _, b := range msg {
		for bit := 7; bit >= 0; bit-- {
			in := uint16(b>>uint(bit)) & 0x0001
			fb := ((sr >> 15) ^ in) & 0x0001
			fb |= (fb << 5) | (fb << 12)
			sr = (sr << 1) ^ fb
		}
	}
	return sr
}
