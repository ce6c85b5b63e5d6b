/*
NAME
  frame_test.go

DESCRIPTION
  frame_test.go provides testing for wrapping and unwrapping of TM
  transfer frames across the optional field configurations.

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

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestNewFrameBounds checks the frame length limits.
func TestNewFrameBounds(t *testing.T) {
	tests := []struct {
		length int
		ok     bool
	}{
		{6, false},
		{7, true},
		{2048, true},
		{2049, false},
	}
	for _, test := range tests {
		_, err := NewFrame(test.length)
		if test.ok && err != nil {
			t.Errorf("did not expect error for length %d: %v", test.length, err)
		}
		if !test.ok && err == nil {
			t.Errorf("expected error for length %d", test.length)
		}
	}
}

// TestFrameFieldBounds checks the range validation of the header setters.
func TestFrameFieldBounds(t *testing.T) {
	f, err := NewFrame(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.SetSpacecraftID(0); err != nil {
		t.Errorf("did not expect error for SCID 0: %v", err)
	}
	if err := f.SetSpacecraftID(1023); err != nil {
		t.Errorf("did not expect error for SCID 1023: %v", err)
	}
	if err := f.SetSpacecraftID(1024); err == nil {
		t.Error("expected error for SCID 1024")
	}

	if err := f.SetVirtualChannelID(7); err != nil {
		t.Errorf("did not expect error for VCID 7: %v", err)
	}
	if err := f.SetVirtualChannelID(8); err == nil {
		t.Error("expected error for VCID 8")
	}

	if err := f.SetMasterChannelFrameCount(255); err != nil {
		t.Errorf("did not expect error for MCFC 255: %v", err)
	}
	if err := f.SetMasterChannelFrameCount(256); err == nil {
		t.Error("expected error for MCFC 256")
	}

	if err := f.SetVirtualChannelFrameCount(255); err != nil {
		t.Errorf("did not expect error for VCFC 255: %v", err)
	}
	if err := f.SetVirtualChannelFrameCount(256); err == nil {
		t.Error("expected error for VCFC 256 without extension")
	}
	if err := f.ActivateExtendedVcFrameCount(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.SetVirtualChannelFrameCount(1 << 20); err != nil {
		t.Errorf("did not expect error for extended VCFC: %v", err)
	}
}

// TestFirstHeaderPointerBounds checks first header pointer validation
// against the data field length and the sentinels.
func TestFirstHeaderPointerBounds(t *testing.T) {
	f, err := NewFrame(64) // Data field length 58.
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.SetFirstHeaderPointer(57); err != nil {
		t.Errorf("did not expect error for FHP 57: %v", err)
	}
	if err := f.SetFirstHeaderPointer(58); err == nil {
		t.Error("expected error for FHP 58")
	}
	if err := f.SetFirstHeaderPointer(FHPNoFirstHeader); err != nil {
		t.Errorf("did not expect error for no-first-header sentinel: %v", err)
	}
	if err := f.SetFirstHeaderPointer(FHPOnlyIdleData); err != nil {
		t.Errorf("did not expect error for idle-data sentinel: %v", err)
	}
}

// TestDataFieldSizing checks that the write path requires the exact data
// field length while the read path pads and truncates.
func TestDataFieldSizing(t *testing.T) {
	f, err := NewFrame(16) // Data field length 10.
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.SetDataField(make([]byte, 9)); err == nil {
		t.Error("expected error for short data field")
	}
	if err := f.SetDataField(make([]byte, 11)); err == nil {
		t.Error("expected error for long data field")
	}
	if err := f.SetDataField(bytes.Repeat([]byte{0xab}, 10)); err != nil {
		t.Errorf("did not expect error for exact data field: %v", err)
	}

	// Activating the OCF shrinks the data field; retrieval truncates.
	f.ActivateOcf()
	data, err := f.DataField()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := bytes.Repeat([]byte{0xab}, 6); !bytes.Equal(data, want) {
		t.Errorf("unexpected truncated data field. Got: %#v\n Want: %#v\n", data, want)
	}
}

// frameConfig describes one codec configuration for round-trip testing.
type frameConfig struct {
	name     string
	length   int
	fecf     bool
	ocf      bool
	sh       bool
	shData   []byte
	extended bool
	sync     bool
}

// buildTestFrame returns a wrapped frame and the frame value it was
// built from.
func buildTestFrame(t *testing.T, conf frameConfig) (*Frame, []byte) {
	f, err := NewFrame(conf.length)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.fecf {
		f.ActivateFecf()
	}
	if conf.ocf {
		f.ActivateOcf()
		var ocf Ocf
		ocf.SetReportType(Type2ProjectSpecific)
		err = ocf.SetContent(0x0a0b0c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		f.SetOcf(ocf)
	}
	if conf.sh {
		f.ActivateSecondHeader()
		err = f.SetSecondHeaderDataField(conf.shData)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if conf.extended {
		err = f.ActivateExtendedVcFrameCount()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if conf.sync {
		f.ActivateDataFieldSynchronisation()
		fhp := uint16(2)
		if f.DataFieldLength() <= int(fhp) {
			fhp = 0
		}
		err = f.SetFirstHeaderPointer(fhp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	err = f.SetSpacecraftID(102)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.SetVirtualChannelID(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.SetMasterChannelFrameCount(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := uint64(17)
	if conf.extended {
		count = 0x0102030a
	}
	err = f.SetVirtualChannelFrameCount(count)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := make([]byte, f.DataFieldLength())
	for i := range data {
		data[i] = byte(i)
	}
	err = f.SetDataField(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := f.Wrap()
	if err != nil {
		t.Fatalf("unexpected wrap error: %v", err)
	}
	return f, raw
}

// TestFrameRoundTrip checks unwrap(wrap(f)) == f across the optional field
// configurations, and the frame length and CRC invariants of every wrap.
func TestFrameRoundTrip(t *testing.T) {
	tests := []frameConfig{
		{name: "bare", length: 64},
		{name: "sync", length: 64, sync: true},
		{name: "fecf", length: 64, fecf: true, sync: true},
		{name: "ocf", length: 64, ocf: true, sync: true},
		{name: "sh", length: 64, sh: true, shData: []byte{0xde, 0xad}, sync: true},
		{name: "extended", length: 64, extended: true, sync: true},
		{name: "everything", length: 128, fecf: true, ocf: true, extended: true, sync: true},
		{name: "min", length: 7, sync: true},
		{name: "max", length: 2048, fecf: true, ocf: true, sync: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, raw := buildTestFrame(t, test)

			if len(raw) != test.length {
				t.Errorf("unexpected wrapped length. Got: %v\n Want: %v\n", len(raw), test.length)
			}
			if test.fecf {
				if got := crc(raw); got != 0 {
					t.Errorf("checksum of wrapped frame not zero. Got: %#x\n", got)
				}
			}

			got, err := NewFrame(test.length)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if test.fecf {
				got.ActivateFecf()
			}
			if test.extended {
				err = got.ActivateExtendedVcFrameCount()
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			err = got.Unwrap(raw)
			if err != nil {
				t.Fatalf("unexpected unwrap error: %v", err)
			}

			if diff := cmp.Diff(f, got, cmp.AllowUnexported(Frame{}, Ocf{}, FrameTimestamp{}, FrameBitrate{})); diff != "" {
				t.Errorf("unexpected frame mismatch (-want +got):\n%v", diff)
			}
		})
	}
}

// TestFrameUnwrapChecksum checks that a single corrupted bit is caught by
// the frame error control field.
func TestFrameUnwrapChecksum(t *testing.T) {
	_, raw := buildTestFrame(t, frameConfig{length: 64, fecf: true, sync: true})
	raw[10] ^= 0x04

	f, err := NewFrame(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.ActivateFecf()
	err = f.Unwrap(raw)
	if err == nil {
		t.Fatal("expected checksum error")
	}
	if !strings.Contains(err.Error(), "Checksum error") {
		t.Errorf("unexpected error text: %v", err)
	}
}

// TestFrameUnwrapVersion checks rejection of a non-zero transfer frame
// version.
func TestFrameUnwrapVersion(t *testing.T) {
	_, raw := buildTestFrame(t, frameConfig{length: 64, sync: true})
	raw[0] |= 0x40 // Force version 1.

	f, err := NewFrame(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.Unwrap(raw)
	if err == nil || !strings.Contains(err.Error(), "unsupported frame version") {
		t.Errorf("expected version error, got: %v", err)
	}
}

// TestFrameUnwrapLength checks rejection of a frame of the wrong length.
func TestFrameUnwrapLength(t *testing.T) {
	f, err := NewFrame(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.Unwrap(make([]byte, 63))
	if err == nil {
		t.Error("expected error for wrong frame length")
	}
}

// TestSecondHeaderTooLong checks the secondary header length limit against
// the space left by the frame configuration.
func TestSecondHeaderTooLong(t *testing.T) {
	f, err := NewFrame(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.ActivateSecondHeader()
	// Frame 16 leaves 16-6-1 = 9 bytes of maximum secondary header, so 8
	// data bytes fit but 9 do not.
	if err := f.SetSecondHeaderDataField(make([]byte, 8)); err != nil {
		t.Errorf("did not expect error for 8 byte secondary header data: %v", err)
	}
	if err := f.SetSecondHeaderDataField(make([]byte, 9)); err == nil {
		t.Error("expected error for 9 byte secondary header data")
	}
}

// TestExtendedCountClaimsSecondHeader checks that the secondary header data
// field is not assignable while the extended frame count owns it.
func TestExtendedCountClaimsSecondHeader(t *testing.T) {
	f, err := NewFrame(64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.ActivateExtendedVcFrameCount()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.SecondHeaderPresent() {
		t.Error("expected secondary header to be activated")
	}
	if err := f.SetSecondHeaderDataField([]byte{1, 2, 3}); err == nil {
		t.Error("expected error assigning second header data with extended count active")
	}
}
