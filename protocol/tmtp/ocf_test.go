/*
NAME
  ocf_test.go

DESCRIPTION
  ocf_test.go provides testing for wrapping and unwrapping of operational
  control fields.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tmtp

import (
	"bytes"
	"testing"
)

// TestOcfRoundTrip checks that unwrap(wrap(ocf)) recovers report type and
// content for all report types.
func TestOcfRoundTrip(t *testing.T) {
	tests := []struct {
		typ     ReportType
		content uint32
	}{
		{Type1CLCW, 0},
		{Type1CLCW, 0x0a0b0c},
		{Type1CLCW, 0x7ffffffe},
		{Type2ProjectSpecific, 0x0a0b0c},
		{Type2ProjectSpecific, 0x3ffffffe},
		{Type2FutureReserved, 0x12345678 & 0x3fffffff},
	}

	for i, test := range tests {
		var ocf Ocf
		ocf.SetReportType(test.typ)
		err := ocf.SetContent(test.content)
		if err != nil {
			t.Fatalf("did not expect error for test %d: %v", i, err)
		}

		raw := ocf.Wrap()
		if len(raw) != OcfLength {
			t.Errorf("unexpected wrapped length for test %d. Got: %v\n Want: %v\n", i, len(raw), OcfLength)
		}

		var got Ocf
		err = got.Unwrap(raw)
		if err != nil {
			t.Fatalf("did not expect unwrap error for test %d: %v", i, err)
		}
		if got.ReportType() != test.typ {
			t.Errorf("unexpected report type for test %d. Got: %v\n Want: %v\n", i, got.ReportType(), test.typ)
		}
		if got.Content() != test.content {
			t.Errorf("unexpected content for test %d. Got: %#x\n Want: %#x\n", i, got.Content(), test.content)
		}
	}
}

// TestOcfWrapBytes checks the exact wire bytes of each report type.
func TestOcfWrapBytes(t *testing.T) {
	tests := []struct {
		typ     ReportType
		content uint32
		expect  []byte
	}{
		{Type1CLCW, 0x0a0b0c0d, []byte{0x0a, 0x0b, 0x0c, 0x0d}},
		{Type2ProjectSpecific, 0x0a0b0c0d, []byte{0x8a, 0x0b, 0x0c, 0x0d}},
		{Type2FutureReserved, 0x0a0b0c0d, []byte{0xca, 0x0b, 0x0c, 0x0d}},
	}

	for i, test := range tests {
		var ocf Ocf
		ocf.SetReportType(test.typ)
		err := ocf.SetContent(test.content)
		if err != nil {
			t.Fatalf("did not expect error for test %d: %v", i, err)
		}
		got := ocf.Wrap()
		if !bytes.Equal(got, test.expect) {
			t.Errorf("unexpected bytes for test %d. Got: %#v\n Want: %#v\n", i, got, test.expect)
		}
	}
}

// TestOcfContentBounds checks the report content width limits: type-1
// content must stay below 0x7FFFFFFF and type-2 below 0x3FFFFFFF.
func TestOcfContentBounds(t *testing.T) {
	tests := []struct {
		typ     ReportType
		content uint32
		ok      bool
	}{
		{Type1CLCW, 0x7ffffffe, true},
		{Type1CLCW, 0x7fffffff, false},
		{Type1CLCW, 0x80000000, false},
		{Type2ProjectSpecific, 0x3ffffffe, true},
		{Type2ProjectSpecific, 0x3fffffff, false},
		{Type2FutureReserved, 0x3fffffff, false},
	}

	for i, test := range tests {
		var ocf Ocf
		ocf.SetReportType(test.typ)
		err := ocf.SetContent(test.content)
		if test.ok && err != nil {
			t.Errorf("did not expect error for test %d: %v", i, err)
		}
		if !test.ok && err == nil {
			t.Errorf("expected error for test %d", i)
		}
	}
}

// TestOcfUnwrapLength checks that unwrap rejects input that is not exactly
// 4 bytes.
func TestOcfUnwrapLength(t *testing.T) {
	var ocf Ocf
	for _, n := range []int{0, 3, 5} {
		err := ocf.Unwrap(make([]byte, n))
		if err == nil {
			t.Errorf("expected error for unwrap of %d bytes", n)
		}
	}
}
