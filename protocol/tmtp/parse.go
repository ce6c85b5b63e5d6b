/*
NAME
  parse.go

DESCRIPTION
  parse.go provides functionality for parsing received TM transfer frames.

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

// Unwrap parses raw as a TM transfer frame, storing the recovered fields
// and flags in f. The receiving frame must be configured beforehand with
// the channel's frame length and FECF policy; secondary header presence and
// synchronisation are taken from the wire.
//
// A checksum failure, an unsupported version or an inconsistent field
// layout fail with a FrameError and leave no data field extracted.
func (f *Frame) Unwrap(raw []byte) error {
	if len(raw) != f.length {
		return frameErrorf("wrong frame length; %d bytes instead of %d", len(raw), f.length)
	}

	if f.fecfPresent {
		if crc(raw) != 0 {
			return frameErrorf("Checksum error")
		}
	}

	headerFirstPart := uint16(raw[0])<<8 | uint16(raw[1])
	if v := (headerFirstPart >> 14) & 0x0003; v != transferFrameVersion {
		return frameErrorf("unsupported frame version %d", v)
	}

	f.spacecraftID = (headerFirstPart >> 4) & 0x03ff
	f.virtualChannelID = uint8(headerFirstPart>>1) & 0x07
	f.ocfPresent = headerFirstPart&0x0001 != 0

	f.masterChannelFrameCount = raw[2]
	f.virtualChannelFrameCount = uint32(raw[3])

	dataFieldStatus := uint16(raw[4])<<8 | uint16(raw[5])
	f.secondHeaderPresent = (dataFieldStatus>>15)&0x0001 != 0

	// The wire synchronisation flag is inverted with respect to the
	// internal representation; flag 0 means byte-synchronised framing.
	f.dataFieldSynchronised = (dataFieldStatus>>14)&0x0001 == 0
	if f.dataFieldSynchronised {
		f.firstHeaderPointer = dataFieldStatus & 0x07ff
	}

	if f.secondHeaderPresent {
		secondHeaderID := raw[primaryHeaderLength]
		if v := (secondHeaderID >> 6) & 0x03; v != secondHeaderVersion {
			return frameErrorf("unsupported secondary header version %d", v)
		}
		shLen := int(secondHeaderID&0x3f) + 1
		if shLen > f.maxSecondHeaderLength() {
			return frameErrorf("second header too long")
		}
		f.secondHeaderData = append([]byte(nil), raw[primaryHeaderLength+1:primaryHeaderLength+shLen]...)
		if f.extendedVcFrameCount {
			if len(f.secondHeaderData) != 3 {
				return frameErrorf("wrong second header length for extended VC frame count")
			}
			f.virtualChannelFrameCount |= uint32(f.secondHeaderData[0]) << 24
			f.virtualChannelFrameCount |= uint32(f.secondHeaderData[1]) << 16
			f.virtualChannelFrameCount |= uint32(f.secondHeaderData[2]) << 8
		}
	} else {
		f.secondHeaderData = nil
		if f.extendedVcFrameCount {
			return frameErrorf("no second header present but extended VC frame count configured")
		}
	}

	if f.DataFieldLength() < 1 {
		return frameErrorf("frame too short for configured features")
	}
	f.dataField = append([]byte(nil), raw[f.dataFieldStart():f.dataFieldEnd()]...)

	if f.ocfPresent {
		err := f.ocf.Unwrap(raw[f.dataFieldEnd() : f.dataFieldEnd()+OcfLength])
		if err != nil {
			return frameErrorf("error in OCF: %v", err)
		}
	}
	return nil
}
