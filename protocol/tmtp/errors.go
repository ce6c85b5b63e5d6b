/*
NAME
  errors.go - fatal error types for the TMTP channel tree, tagged by the
  subsystem that raised them.

DESCRIPTION
  See Readme.md

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

import (
	"strconv"

	"github.com/pkg/errors"
)

// FrameError reports a fatal problem while building, wrapping or unwrapping
// a transfer frame.
type FrameError struct {
	err error
}

func frameErrorf(format string, args ...interface{}) error {
	return &FrameError{err: errors.Errorf(format, args...)}
}

func (e *FrameError) Error() string { return "transfer frame: " + e.err.Error() }
func (e *FrameError) Cause() error  { return e.err }
func (e *FrameError) Unwrap() error { return e.err }

// OcfError reports a fatal problem with an operational control field value.
type OcfError struct {
	err error
}

func ocfErrorf(format string, args ...interface{}) error {
	return &OcfError{err: errors.Errorf(format, args...)}
}

func (e *OcfError) Error() string { return "OCF: " + e.err.Error() }
func (e *OcfError) Cause() error  { return e.err }
func (e *OcfError) Unwrap() error { return e.err }

// VirtualChannelError reports a fatal problem in a virtual channel. It
// carries the VCID of the channel that raised it.
type VirtualChannelError struct {
	VCID uint8
	err  error
}

func vcErrorf(vcid uint8, format string, args ...interface{}) error {
	return &VirtualChannelError{VCID: vcid, err: errors.Errorf(format, args...)}
}

func (e *VirtualChannelError) Error() string {
	return "virtual channel " + strconv.Itoa(int(e.VCID)) + ": " + e.err.Error()
}
func (e *VirtualChannelError) Cause() error  { return e.err }
func (e *VirtualChannelError) Unwrap() error { return e.err }

// MasterChannelError reports a fatal problem in the master channel.
type MasterChannelError struct {
	err error
}

func mcErrorf(format string, args ...interface{}) error {
	return &MasterChannelError{err: errors.Errorf(format, args...)}
}

func (e *MasterChannelError) Error() string { return "master channel: " + e.err.Error() }
func (e *MasterChannelError) Cause() error  { return e.err }
func (e *MasterChannelError) Unwrap() error { return e.err }

// PhysicalChannelError reports a fatal problem in the physical channel.
type PhysicalChannelError struct {
	err error
}

func pcErrorf(format string, args ...interface{}) error {
	return &PhysicalChannelError{err: errors.Errorf(format, args...)}
}

func (e *PhysicalChannelError) Error() string { return "physical channel: " + e.err.Error() }
func (e *PhysicalChannelError) Cause() error  { return e.err }
func (e *PhysicalChannelError) Unwrap() error { return e.err }
