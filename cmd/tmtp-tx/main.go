/*
NAME
  tmtp-tx - example TMTP sender: frames packets read from standard input
  onto a telemetry downlink carried over a TCP connection.

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
	"bufio"
	"flag"
	"io"
	"net"
	"os"
	"time"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/tmtp/protocol/tmtp"
	"github.com/ausocean/tmtp/protocol/tmtp/netconf"
)

// Defaults mirroring the reference ground segment configuration: five
// Reed-Solomon codeblocks of 223 bytes per frame and spacecraft 102.
const (
	progName           = "tmtp-tx"
	defaultFrameLength = 223 * 5
	defaultSCID        = 102
	defaultVCID        = 1
	defaultAddr        = "localhost:1736"
	defaultPeriod      = 100 * time.Millisecond
)

// Logging configuration.
const (
	logPath      = "/var/log/tmtp/tmtp-tx.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	var (
		addrPtr    = flag.String("addr", defaultAddr, "destination address for raw frames")
		lengthPtr  = flag.Int("length", defaultFrameLength, "transfer frame length in bytes")
		scidPtr    = flag.Uint("scid", defaultSCID, "spacecraft ID")
		vcidPtr    = flag.Uint("vcid", defaultVCID, "virtual channel ID for packet data")
		periodPtr  = flag.Duration("period", defaultPeriod, "frame emission period")
		fecfPtr    = flag.Bool("fecf", true, "append the CRC-16 frame error control field")
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

	// Assemble the channel tree: physical, master, one data virtual
	// channel speaking the test protocol.
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

	conn, err := net.Dial("tcp", *addrPtr)
	if err != nil {
		log.Fatal("could not connect", "addr", *addrPtr, "error", err)
	}
	defer conn.Close()
	log.Info("connected", "addr", *addrPtr)

	// One packet per line of standard input. The channel tree is not safe
	// for concurrent use, so lines are handed to the framing loop and
	// queued there; an idle stdin produces idle frames.
	lines := make(chan []byte, 16)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- append([]byte(nil), scanner.Bytes()...)
		}
		if err := scanner.Err(); err != nil {
			log.Error("stdin read failed", "error", err)
		}
		close(lines)
	}()

	for range time.Tick(*periodPtr) {
	queue:
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					break queue
				}
				err := vc.SendPacket(conf.GenTestPacket(line))
				if err != nil {
					log.Warning("packet dropped", "error", err)
				}
			default:
				break queue
			}
		}

		raw, err := pc.SendFrame(tmtp.FrameTimestamp{})
		if err != nil {
			log.Fatal("could not build frame", "error", err)
		}
		_, err = conn.Write(raw)
		if err != nil {
			log.Fatal("could not send frame", "error", err)
		}
		log.Debug("sent frame", "size", len(raw))
	}
}
