/*
NAME
  frame.go - provides a data structure encapsulating the properties of a
  TM transfer frame and functions to serialise such frames.

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

// First header pointer sentinels.
const (
	// FHPNoFirstHeader indicates no packet starts in the data field; a long
	// packet is spanning across frames.
	FHPNoFirstHeader = 0x07ff

	// FHPOnlyIdleData indicates the data field carries idle data only.
	FHPOnlyIdleData = 0x07fe
)

const (
	transferFrameVersion = 0 // '00' is the only TF version in ECSS-E-ST-50-03C.
	secondHeaderVersion  = 0 // '00' (version 1) likewise for the secondary header.
)

/*
Frame encapsulates the fields of a TM transfer frame. Below is the frame
format for reference!

============================================================================
| field    | bits                                                          |
============================================================================
| octets   | version(2) | scid(10) | vcid(3) | ocf flag(1)                 |
| 0-1      |                                                               |
----------------------------------------------------------------------------
| octet 2  | master channel frame count(8)                                 |
----------------------------------------------------------------------------
| octet 3  | virtual channel frame count(8)                                |
----------------------------------------------------------------------------
| octets   | sec hdr flag(1) | sync flag(1) | packet order(1) |            |
| 4-5      | segment length id(2) | first header pointer(11)              |
----------------------------------------------------------------------------
| optional | sec hdr version(2) | sec hdr length(6) | sec hdr data         |
----------------------------------------------------------------------------
| -        | data field (variable)                                         |
----------------------------------------------------------------------------
| optional | operational control field (4 bytes)                           |
----------------------------------------------------------------------------
| optional | frame error control field (2 bytes)                           |
----------------------------------------------------------------------------

CAUTION: the internal dataFieldSynchronised flag is inverted with respect
to the wire: dataFieldSynchronised true means the synchronisation flag bit
on the wire is 0, i.e. the byte-synchronised forward-ordered packet framing
with a first header pointer. Refer to ECSS-E-ST-50-03C clause 5.2.7.3.
*/
type Frame struct {
	length                   int
	spacecraftID             uint16
	virtualChannelID         uint8
	ocfPresent               bool
	masterChannelFrameCount  uint8
	virtualChannelFrameCount uint32
	secondHeaderPresent      bool
	extendedVcFrameCount     bool
	dataFieldSynchronised    bool
	firstHeaderPointer       uint16
	fecfPresent              bool

	secondHeaderData []byte
	dataField        []byte
	ocf              Ocf

	timestamp FrameTimestamp
	bitrate   FrameBitrate
}

// NewFrame returns a frame of the given total length in bytes, which must
// be in [MinFrameLength,MaxFrameLength]. All optional fields start
// deactivated and all counters at zero.
func NewFrame(length int) (*Frame, error) {
	if length < MinFrameLength || length > MaxFrameLength {
		return nil, frameErrorf("frame length out of range (%d-%d)", MinFrameLength, MaxFrameLength)
	}
	return &Frame{length: length}, nil
}

// TransferFrameVersion returns the transfer frame version number.
func (f *Frame) TransferFrameVersion() int { return transferFrameVersion }

// SetSpacecraftID sets the spacecraft identifier, a 10-bit field.
func (f *Frame) SetSpacecraftID(id uint16) error {
	if id >= 1024 {
		return frameErrorf("spacecraft ID out of range (0-1023)")
	}
	f.spacecraftID = id
	return nil
}

// SpacecraftID returns the spacecraft identifier.
func (f *Frame) SpacecraftID() uint16 { return f.spacecraftID }

// SetVirtualChannelID sets the virtual channel identifier, a 3-bit field.
func (f *Frame) SetVirtualChannelID(id uint8) error {
	if id >= numVirtualChannels {
		return frameErrorf("virtual channel ID out of range (0-7)")
	}
	f.virtualChannelID = id
	return nil
}

// VirtualChannelID returns the virtual channel identifier.
func (f *Frame) VirtualChannelID() uint8 { return f.virtualChannelID }

// ActivateOcf sets the operational control field flag.
func (f *Frame) ActivateOcf() { f.ocfPresent = true }

// OcfPresent returns the value of the operational control field flag.
func (f *Frame) OcfPresent() bool { return f.ocfPresent }

// SetOcf inserts the operational control field carried in the trailer.
func (f *Frame) SetOcf(ocf Ocf) { f.ocf = ocf }

// Ocf returns the operational control field currently in the trailer.
func (f *Frame) Ocf() Ocf { return f.ocf }

// ActivateFecf sets the frame error control field flag.
func (f *Frame) ActivateFecf() { f.fecfPresent = true }

// FecfPresent returns the value of the frame error control field flag.
func (f *Frame) FecfPresent() bool { return f.fecfPresent }

// SetMasterChannelFrameCount sets the mod-256 master channel frame counter.
func (f *Frame) SetMasterChannelFrameCount(count uint16) error {
	if count >= 256 {
		return frameErrorf("master channel frame count out of range (0-255)")
	}
	f.masterChannelFrameCount = uint8(count)
	return nil
}

// MasterChannelFrameCount returns the master channel frame counter.
func (f *Frame) MasterChannelFrameCount() uint16 { return uint16(f.masterChannelFrameCount) }

// SetVirtualChannelFrameCount sets the virtual channel frame counter. The
// counter is mod-256 unless the extended count is active, in which case the
// full 32-bit value is kept and its upper three bytes travel in the
// secondary header data field.
func (f *Frame) SetVirtualChannelFrameCount(count uint64) error {
	if !f.extendedVcFrameCount && count >= 256 {
		return frameErrorf("virtual channel frame count out of range (0-255)")
	}
	f.virtualChannelFrameCount = uint32(count)
	return nil
}

// VirtualChannelFrameCount returns the virtual channel frame counter.
func (f *Frame) VirtualChannelFrameCount() uint64 { return uint64(f.virtualChannelFrameCount) }

// ActivateSecondHeader sets the secondary header flag.
func (f *Frame) ActivateSecondHeader() { f.secondHeaderPresent = true }

// SecondHeaderPresent returns the value of the secondary header flag.
func (f *Frame) SecondHeaderPresent() bool { return f.secondHeaderPresent }

// ActivateExtendedVcFrameCount activates the extended virtual channel frame
// counter, which claims the secondary header data field for the upper three
// counter bytes. With an empty secondary header the header is activated and
// its data pinned to three zero bytes. With exactly three bytes already
// present their contents are folded into the counter (they are assumed to
// be a counter extension, e.g. after Unwrap). Any other prior secondary
// header state is an error.
func (f *Frame) ActivateExtendedVcFrameCount() error {
	f.extendedVcFrameCount = true
	if len(f.secondHeaderData) == 0 {
		f.ActivateSecondHeader()
		f.secondHeaderData = make([]byte, 3)
		return nil
	}
	if !f.secondHeaderPresent {
		return frameErrorf("no second header present but extended VC frame count configured")
	}
	if len(f.secondHeaderData) != 3 {
		return frameErrorf("wrong second header length for extended VC frame count")
	}
	f.virtualChannelFrameCount |= uint32(f.secondHeaderData[0]) << 24
	f.virtualChannelFrameCount |= uint32(f.secondHeaderData[1]) << 16
	f.virtualChannelFrameCount |= uint32(f.secondHeaderData[2]) << 8
	return nil
}

// ExtendedVcFrameCount returns the value of the extended VC frame counter flag.
func (f *Frame) ExtendedVcFrameCount() bool { return f.extendedVcFrameCount }

// SecondHeaderVersion returns the secondary header version number.
func (f *Frame) SecondHeaderVersion() int { return secondHeaderVersion }

// SecondHeaderLength returns the length of the secondary header in bytes,
// i.e. its data field plus the one-byte version/length field.
func (f *Frame) SecondHeaderLength() int { return len(f.secondHeaderData) + 1 }

// SetSecondHeaderDataField populates the secondary header data field. The
// field is unavailable while the extended VC frame counter owns it.
func (f *Frame) SetSecondHeaderDataField(data []byte) error {
	if f.extendedVcFrameCount {
		return frameErrorf("assignment of second header data field is invalid if extended VC frame count is used")
	}
	if len(data) > f.maxSecondHeaderLength()-1 {
		return frameErrorf("second header data field is too long")
	}
	f.secondHeaderData = data
	return nil
}

// SecondHeaderDataField returns the contents of the secondary header data field.
func (f *Frame) SecondHeaderDataField() []byte { return f.secondHeaderData }

// ActivateDataFieldSynchronisation selects the byte-synchronised
// forward-ordered packet framing for the data field, i.e. wire
// synchronisation flag 0 and a meaningful first header pointer.
func (f *Frame) ActivateDataFieldSynchronisation() { f.dataFieldSynchronised = true }

// DataFieldSynchronised reports whether the data field uses the
// byte-synchronised forward-ordered packet framing.
func (f *Frame) DataFieldSynchronised() bool { return f.dataFieldSynchronised }

// SetFirstHeaderPointer sets the byte offset into the data field at which
// the first packet header starts, or one of the sentinels FHPNoFirstHeader
// and FHPOnlyIdleData.
func (f *Frame) SetFirstHeaderPointer(location uint16) error {
	max := f.DataFieldLength() - 1
	if int(location) <= max || location == FHPNoFirstHeader || location == FHPOnlyIdleData {
		f.firstHeaderPointer = location
		return nil
	}
	return frameErrorf("first header pointer out of range (0-%d,%#x,%#x)", max, FHPNoFirstHeader, FHPOnlyIdleData)
}

// FirstHeaderPointer returns the value of the first header pointer.
func (f *Frame) FirstHeaderPointer() uint16 { return f.firstHeaderPointer }

// Length returns the total transfer frame length in bytes.
func (f *Frame) Length() int { return f.length }

// DataFieldLength returns the data field length implied by the frame length
// and the active optional fields. The result is not positive when the
// optional fields leave no room; Wrap and Unwrap reject such configurations.
func (f *Frame) DataFieldLength() int {
	l := f.length - primaryHeaderLength
	if f.secondHeaderPresent {
		l -= f.SecondHeaderLength()
	}
	if f.ocfPresent {
		l -= OcfLength
	}
	if f.fecfPresent {
		l -= fecfLength
	}
	return l
}

// maxSecondHeaderLength returns the largest permissible secondary header
// length for this frame: what remains after the primary header, trailer
// fields and a minimum one-byte data field, capped at the standard's 64.
func (f *Frame) maxSecondHeaderLength() int {
	l := f.length - primaryHeaderLength - 1
	if f.ocfPresent {
		l -= OcfLength
	}
	if f.fecfPresent {
		l -= fecfLength
	}
	if l < 0 {
		l = 0
	}
	if l > 64 {
		l = 64
	}
	return l
}

// SetDataField populates the data field. The data must exactly fill the
// length implied by the current frame configuration.
func (f *Frame) SetDataField(data []byte) error {
	if len(data) != f.DataFieldLength() {
		return frameErrorf("data field has wrong size; it is %d but should be %d bytes long", len(data), f.DataFieldLength())
	}
	f.dataField = data
	return nil
}

// DataField returns the data field contents, padded with zeroes or
// truncated to the configured data field length. The retrieval path is
// deliberately lenient; only SetDataField enforces exact sizing.
func (f *Frame) DataField() ([]byte, error) {
	dfl := f.DataFieldLength()
	if dfl < 1 {
		return nil, frameErrorf("invalid data field size (less than 1 byte)")
	}
	ret := make([]byte, dfl)
	copy(ret, f.dataField)
	return ret, nil
}

// SetTimestamp stores the reference reception timestamp for this frame.
func (f *Frame) SetTimestamp(t FrameTimestamp) { f.timestamp = t }

// Timestamp returns the stored reference reception timestamp.
func (f *Frame) Timestamp() FrameTimestamp { return f.timestamp }

// SetBitrate stores the reference reception bitrate for this frame.
func (f *Frame) SetBitrate(b FrameBitrate) { f.bitrate = b }

// Bitrate returns the stored reference reception bitrate.
func (f *Frame) Bitrate() FrameBitrate { return f.bitrate }

// Wrap serialises the frame into its wire bytes: primary header, optional
// secondary header, data field, optional OCF and optional FECF. The
// optional fields must be activated before Wrap so the data field length
// computes correctly.
func (f *Frame) Wrap() ([]byte, error) {
	if f.DataFieldLength() < 1 {
		return nil, frameErrorf("frame too short to carry all configured information")
	}

	var headerFirstPart uint16
	headerFirstPart |= (transferFrameVersion & 0x0003) << 14
	headerFirstPart |= (f.spacecraftID & 0x03ff) << 4
	headerFirstPart |= uint16(f.virtualChannelID&0x07) << 1
	if f.ocfPresent {
		headerFirstPart |= 0x0001
	}

	var dataFieldStatus uint16
	if f.secondHeaderPresent {
		dataFieldStatus |= 0x0001 << 15
	}
	if f.dataFieldSynchronised {
		// Wire synchronisation flag 0, segment length identifier 0b11 and a
		// meaningful first header pointer.
		dataFieldStatus |= 0x0003 << 11
		dataFieldStatus |= f.firstHeaderPointer & 0x07ff
	} else {
		// Wire synchronisation flag 1; remaining bits undefined, left zero.
		dataFieldStatus |= 0x0001 << 14
	}

	var secondHeaderID uint8
	if f.secondHeaderPresent {
		if f.extendedVcFrameCount {
			f.secondHeaderData = []byte{
				byte(f.virtualChannelFrameCount >> 24),
				byte(f.virtualChannelFrameCount >> 16),
				byte(f.virtualChannelFrameCount >> 8),
			}
		}
		secondHeaderID |= (secondHeaderVersion & 0x03) << 6
		secondHeaderID |= uint8(f.SecondHeaderLength()-1) & 0x3f
	}

	raw := make([]byte, 0, f.length)
	raw = append(raw, byte(headerFirstPart>>8), byte(headerFirstPart))
	raw = append(raw, f.masterChannelFrameCount)
	raw = append(raw, byte(f.virtualChannelFrameCount))
	raw = append(raw, byte(dataFieldStatus>>8), byte(dataFieldStatus))

	if f.secondHeaderPresent {
		raw = append(raw, secondHeaderID)
		raw = append(raw, f.secondHeaderData...)
	}

	data, err := f.DataField()
	if err != nil {
		return nil, err
	}
	raw = append(raw, data...)

	if f.ocfPresent {
		raw = append(raw, f.ocf.Wrap()...)
	}

	if f.fecfPresent {
		fecf := crc(raw)
		raw = append(raw, byte(fecf>>8), byte(fecf))
	}

	return raw, nil
}

// dataFieldStart returns the byte position at which the data field starts.
func (f *Frame) dataFieldStart() int {
	start := primaryHeaderLength
	if f.secondHeaderPresent {
		start += f.SecondHeaderLength()
	}
	return start
}

// dataFieldEnd returns the byte position at which the data field ends.
func (f *Frame) dataFieldEnd() int {
	end := f.length
	if f.ocfPresent {
		end -= OcfLength
	}
	if f.fecfPresent {
		end -= fecfLength
	}
	return end
}
