/*
NAME
  tmtp-rx - example TMTP receiver: reads raw frames from a TCP connection,
  runs them through the receive channel tree and stores delivered packet
  payloads under outputFiles/.

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

package main

import (
	"flag"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/tmtp/protocol/tmtp"
	"github.com/ausocean/tmtp/protocol/tmtp/netconf"
)

// Defaults mirroring the reference ground segment configuration.
const (
	progName           = "tmtp-rx"
	defaultFrameLength = 223 * 5
	defaultSCID        = 102
	defaultVCID        = 1
	defaultAddr        = ":1736"
	defaultOutDir      = "outputFiles"
)

// Logging configuration.
const (
	logPath      = "/var/log/tmtp/tmtp-rx.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	var (
		addrPtr    = flag.String("addr", defaultAddr, "listen address for raw frames")
		lengthPtr  = flag.Int("length", defaultFrameLength, "transfer frame length in bytes")
		scidPtr    = flag.Uint("scid", defaultSCID, "spacecraft ID")
		vcidPtr    = flag.Uint("vcid", defaultVCID, "virtual channel ID for packet data")
		fecfPtr    = flag.Bool("fecf", true, "verify the CRC-16 frame error control field")
		bitratePtr = flag.Float64("bitrate", 0, "downlink bitrate in bits per second, 0 for unknown")
		outPtr     = flag.String("out", defaultOutDir, "directory for received packet payloads")
		verbosePtr = flag.Bool("verbose", false, "log at debug verbosity to stderr")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	verbosity := logVerbosity
	var dst io.Writer = fileLog
	if *verbosePtr {
		verbosity = logging.Debug
		dst = io.MultiWriter(fileLog, os.Stderr)
	}
	log := logging.New(verbosity, dst, logSuppress)

	log.Info("starting "+progName, "addr", *addrPtr, "frameLength", *lengthPtr, "scid", *scidPtr)

	var options []func(*tmtp.PhysicalChannel) error
	if *fecfPtr {
		options = append(options, tmtp.FECF)
	}
	pc, err := tmtp.NewPhysicalChannel(*lengthPtr, log, options...)
	if err != nil {
		log.Fatal("could not create physical channel", "error", err)
	}
	mc, err := pc.CreateMasterChannel(uint16(*scidPtr))
	if err != nil {
		log.Fatal("could not create master channel", "error", err)
	}
	mc.DeactivateOcf()
	vc, err := mc.CreateVirtualChannel(uint8(*vcidPtr))
	if err != nil {
		log.Fatal("could not create virtual channel", "error", err)
	}
	conf := netconf.Test{}
	vc.SetNetProtConf(conf)
	if *verbosePtr {
		vc.ActivateDebugOutput()
	}

	sink := &fileSink{vc: vc, conf: conf, dir: *outPtr, log: log}
	vc.ConnectPacketSink(sink)

	ln, err := net.Listen("tcp", *addrPtr)
	if err != nil {
		log.Fatal("could not listen", "addr", *addrPtr, "error", err)
	}
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error("accept failed", "error", err)
			continue
		}
		log.Info("transport connected", "remote", conn.RemoteAddr().String())
		serve(conn, pc, *lengthPtr, *bitratePtr, log)
		conn.Close()
	}
}

// serve reads fixed-length frames from conn until it closes, feeding each
// into the channel tree with its arrival time as the reference timestamp.
func serve(conn net.Conn, pc *tmtp.PhysicalChannel, length int, bitrate float64, log logging.Logger) {
	raw := make([]byte, length)
	for {
		_, err := io.ReadFull(conn, raw)
		if err != nil {
			if err != io.EOF {
				log.Error("frame read failed", "error", err)
			}
			return
		}

		now := time.Now()
		var ts tmtp.FrameTimestamp
		ts.SetSeconds(uint64(now.Unix()))
		err = ts.SetFractions(float64(now.Nanosecond()) / 1e9)
		if err != nil {
			log.Warning("bad frame timestamp", "error", err)
		}
		var br tmtp.FrameBitrate
		if bitrate > 0 {
			br = tmtp.NewFrameBitrate(bitrate)
		}

		warning, err := pc.ReceiveFrame(raw, ts, br)
		if err != nil {
			log.Error("frame processing failed", "error", err)
			return
		}
		for msg := warning.PopWarning(); msg != ""; msg = warning.PopWarning() {
			log.Warning("channel warning", "warning", msg)
		}
	}
}

// fileSink drains a virtual channel's receive queue into one file per
// packet, named by the packet timestamp, the payload stripped of its
// protocol header.
type fileSink struct {
	vc   *tmtp.VirtualChannel
	conf netconf.Conf
	dir  string
	log  logging.Logger
}

// SignalNewPacket implements tmtp.PacketSink.
func (s *fileSink) SignalNewPacket() error {
	for s.vc.PacketAvailable() {
		packet, err := s.vc.ReceivePacket()
		if err != nil {
			return err
		}
		s.log.Debug("received packet", "packet", s.conf.Describe(packet.Data))

		secs := uint64(time.Now().Unix())
		if packet.Timestamp.Valid() {
			secs = packet.Timestamp.Seconds()
		}
		err = os.MkdirAll(s.dir, 0775)
		if err != nil {
			return err
		}
		name := filepath.Join(s.dir, strconv.FormatUint(secs, 10))
		header := s.conf.PacketHeaderLength(packet.Data[0])
		err = os.WriteFile(name, packet.Data[header:], 0664)
		if err != nil {
			return err
		}
		s.log.Info("packet stored", "file", name, "size", len(packet.Data)-header)
	}
	return nil
}
