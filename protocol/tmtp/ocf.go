/*
NAME
  ocf.go - the 4-byte operational control field carried in the transfer
  frame trailer.

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

// OcfLength is the size of a wrapped operational control field in bytes.
const OcfLength = 4

// ReportType distinguishes the three OCF report layouts. The type is
// encoded in the leading bits of the first OCF byte: a leading 0 is a
// Type-1 CLCW report with 31 content bits; leading 10 and 11 are Type-2
// reports with 30 content bits.
type ReportType int

const (
	Type1CLCW ReportType = iota
	Type2ProjectSpecific
	Type2FutureReserved
)

// Ocf is an operational control field value: a report type plus its
// content bits. The zero value is an empty Type-1 CLCW report.
type Ocf struct {
	reportType ReportType
	content    uint32
}

// SetReportType sets the report type of the OCF.
func (o *Ocf) SetReportType(t ReportType) { o.reportType = t }

// ReportType returns the current report type of the OCF.
func (o Ocf) ReportType() ReportType { return o.reportType }

// SetContent stores data as the report content. Type-1 reports carry
// 31 bits and reject content >= 0x7FFFFFFF; Type-2 reports carry 30 bits
// and reject content >= 0x3FFFFFFF.
func (o *Ocf) SetContent(data uint32) error {
	if o.reportType == Type1CLCW {
		if data >= 0x7FFFFFFF {
			return ocfErrorf("content too large for type-1 report")
		}
	} else {
		if data >= 0x3FFFFFFF {
			return ocfErrorf("content too large for type-2 report")
		}
	}
	o.content = data
	return nil
}

// Content returns the report content bits.
func (o Ocf) Content() uint32 { return o.content }

// Wrap serialises the OCF into its 4-byte wire form: the report type flags
// in the leading bits of the first byte, then big-endian content.
func (o Ocf) Wrap() []byte {
	raw := make([]byte, OcfLength)

	var first byte
	switch o.reportType {
	case Type1CLCW:
		first = byte(o.content>>24) & 0x7f
	case Type2ProjectSpecific:
		first = 0x80 | byte(o.content>>24)&0x3f
	case Type2FutureReserved:
		first = 0xc0 | byte(o.content>>24)&0x3f
	}

	raw[0] = first
	raw[1] = byte(o.content >> 16)
	raw[2] = byte(o.content >> 8)
	raw[3] = byte(o.content)
	return raw
}

// Unwrap recovers report type and content from a 4-byte wire OCF.
func (o *Ocf) Unwrap(raw []byte) error {
	if len(raw) != OcfLength {
		return ocfErrorf("wrong OCF length; %d bytes received, instead of %d", len(raw), OcfLength)
	}
	switch {
	case raw[0]&0x80 == 0:
		o.reportType = Type1CLCW
		o.content = uint32(raw[0]&0x7f) << 24
	case raw[0]&0x40 == 0:
		o.reportType = Type2ProjectSpecific
		o.content = uint32(raw[0]&0x3f) << 24
	default:
		o.reportType = Type2FutureReserved
		o.content = uint32(raw[0]&0x3f) << 24
	}
	o.content |= uint32(raw[1]) << 16
	o.content |= uint32(raw[2]) << 8
	o.content |= uint32(raw[3])
	return nil
}
