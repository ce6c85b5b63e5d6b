/*
NAME
  warning.go - accumulation of the non-fatal anomalies observed while
  receiving transfer frames.

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
	"fmt"
	"strings"
)

// ChannelWarning collects the non-fatal anomalies seen while processing
// received frames. It is a plain value: warnings from nested channels are
// fused with Merge (counters add, flags OR, messages concatenate) and the
// caller drains them one category at a time with PopWarning.
type ChannelWarning struct {
	frameUnwrapError         string
	lostMCFrames             uint64
	lostVCFrames             uint64
	packetResync             bool
	noPacketSinkSpecified    bool
	noOcfSinkSpecified       bool
	unconfiguredVC           bool
	unconfiguredMC           bool
	recPacketBufferOverflow  bool
	recOcfBufferOverflow     bool
	wrongOcfFlag             bool
	wrongScid                bool
	wrongVcid                bool
	wrongSecondHeaderFlag    bool
	wrongSynchronisationFlag bool
	freeMessage              string
}

// Merge accumulates rhs into w: string and counter categories add,
// boolean categories OR together.
func (w *ChannelWarning) Merge(rhs ChannelWarning) {
	w.frameUnwrapError += rhs.frameUnwrapError
	w.lostMCFrames += rhs.lostMCFrames
	w.lostVCFrames += rhs.lostVCFrames

	w.packetResync = w.packetResync || rhs.packetResync
	w.noPacketSinkSpecified = w.noPacketSinkSpecified || rhs.noPacketSinkSpecified
	w.noOcfSinkSpecified = w.noOcfSinkSpecified || rhs.noOcfSinkSpecified
	w.unconfiguredVC = w.unconfiguredVC || rhs.unconfiguredVC
	w.unconfiguredMC = w.unconfiguredMC || rhs.unconfiguredMC
	w.recPacketBufferOverflow = w.recPacketBufferOverflow || rhs.recPacketBufferOverflow
	w.recOcfBufferOverflow = w.recOcfBufferOverflow || rhs.recOcfBufferOverflow
	w.wrongOcfFlag = w.wrongOcfFlag || rhs.wrongOcfFlag
	w.wrongScid = w.wrongScid || rhs.wrongScid
	w.wrongVcid = w.wrongVcid || rhs.wrongVcid
	w.wrongSecondHeaderFlag = w.wrongSecondHeaderFlag || rhs.wrongSecondHeaderFlag
	w.wrongSynchronisationFlag = w.wrongSynchronisationFlag || rhs.wrongSynchronisationFlag

	w.freeMessage += rhs.freeMessage
}

// addFrameUnwrapError appends msg, with newlines flattened to spaces, to
// the frame unwrap error category.
func (w *ChannelWarning) addFrameUnwrapError(msg string) {
	w.frameUnwrapError += strings.ReplaceAll(msg, "\n", " ") + "; "
}

// addMCLostFramesCount accumulates lost master channel frames.
func (w *ChannelWarning) addMCLostFramesCount(count uint64) { w.lostMCFrames += count }

// addVCLostFramesCount accumulates lost virtual channel frames.
func (w *ChannelWarning) addVCLostFramesCount(count uint64) { w.lostVCFrames += count }

func (w *ChannelWarning) setPacketResynced()           { w.packetResync = true }
func (w *ChannelWarning) setNoPacketSinkSpecified()    { w.noPacketSinkSpecified = true }
func (w *ChannelWarning) setNoOcfSinkSpecified()       { w.noOcfSinkSpecified = true }
func (w *ChannelWarning) setUnconfiguredVC()           { w.unconfiguredVC = true }
func (w *ChannelWarning) setUnconfiguredMC()           { w.unconfiguredMC = true }
func (w *ChannelWarning) setRecPacketBufferOverflow()  { w.recPacketBufferOverflow = true }
func (w *ChannelWarning) setRecOcfBufferOverflow()     { w.recOcfBufferOverflow = true }
func (w *ChannelWarning) setWrongOcfFlag()             { w.wrongOcfFlag = true }
func (w *ChannelWarning) setWrongScid()                { w.wrongScid = true }
func (w *ChannelWarning) setWrongVcid()                { w.wrongVcid = true }
func (w *ChannelWarning) setWrongSecondHeaderFlag()    { w.wrongSecondHeaderFlag = true }
func (w *ChannelWarning) setWrongSynchronisationFlag() { w.wrongSynchronisationFlag = true }

// appendFreeMessage appends msg, with newlines flattened to spaces, to the
// free-form message category.
func (w *ChannelWarning) appendFreeMessage(msg string) {
	w.freeMessage += strings.ReplaceAll(msg, "\n", " ") + "; "
}

// PopWarning drains and returns one warning category as a message, highest
// priority first, or "" when nothing remains. The drain order is fixed so
// repeated calls are reproducible.
func (w *ChannelWarning) PopWarning() string {
	switch {
	case w.frameUnwrapError != "":
		msg := "Error while unwrapping the frame: " + w.frameUnwrapError
		w.frameUnwrapError = ""
		return msg
	case w.lostMCFrames > 0:
		msg := fmt.Sprintf("Lost %d master channel frames.", w.lostMCFrames)
		w.lostMCFrames = 0
		return msg
	case w.lostVCFrames > 0:
		msg := fmt.Sprintf("Lost %d virtual channel frames.", w.lostVCFrames)
		w.lostVCFrames = 0
		return msg
	case w.packetResync:
		w.packetResync = false
		return "Packet resync."
	case w.noPacketSinkSpecified:
		w.noPacketSinkSpecified = false
		return "No packet sink specified."
	case w.noOcfSinkSpecified:
		w.noOcfSinkSpecified = false
		return "No OCF sink specified."
	case w.unconfiguredVC:
		w.unconfiguredVC = false
		return "Frame for unconfigured virtual channel received."
	case w.unconfiguredMC:
		w.unconfiguredMC = false
		return "Frame for unconfigured master channel received."
	case w.recPacketBufferOverflow:
		w.recPacketBufferOverflow = false
		return "Buffer overflow in received packet buffer."
	case w.recOcfBufferOverflow:
		w.recOcfBufferOverflow = false
		return "Buffer overflow in received OCF buffer."
	case w.wrongOcfFlag:
		w.wrongOcfFlag = false
		return "Frame with wrong OCF flag received."
	case w.wrongScid:
		w.wrongScid = false
		return "Frame with wrong spacecraft ID received."
	case w.wrongVcid:
		w.wrongVcid = false
		return "Frame with wrong virtual channel ID received."
	case w.wrongSecondHeaderFlag:
		w.wrongSecondHeaderFlag = false
		return "Frame with wrong second header flag received."
	case w.wrongSynchronisationFlag:
		w.wrongSynchronisationFlag = false
		return "Frame with wrong synchronisation flag received."
	case w.freeMessage != "":
		msg := w.freeMessage
		w.freeMessage = ""
		return msg
	}
	return ""
}

// WarningAvailable reports whether at least one category holds a warning.
func (w *ChannelWarning) WarningAvailable() bool {
	return w.frameUnwrapError != "" ||
		w.lostMCFrames > 0 ||
		w.lostVCFrames > 0 ||
		w.packetResync ||
		w.noPacketSinkSpecified ||
		w.noOcfSinkSpecified ||
		w.unconfiguredVC ||
		w.unconfiguredMC ||
		w.recPacketBufferOverflow ||
		w.recOcfBufferOverflow ||
		w.wrongOcfFlag ||
		w.wrongScid ||
		w.wrongVcid ||
		w.wrongSecondHeaderFlag ||
		w.wrongSynchronisationFlag ||
		w.freeMessage != ""
}
