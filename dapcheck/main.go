// Copyright 2021 Sebastian Lehmann. All rights reserved.
// Use of this source code is governed by a GNU-style
// license that can be found in the LICENSE file.

// dapcheck enumerates attached CMSIS-DAP v2 probes and runs a few
// harmless commands against them, to verify a device speaks the same
// wire protocol the godap core implements.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bbnote/godap"
	"github.com/google/gousb"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	logger *logrus.Logger
)

func initLogger() {
	formatter := &prefixed.TextFormatter{
		DisableColors:   false,
		TimestampFormat: "15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	}

	logger = logrus.New()

	logger.SetFormatter(formatter)
	logger.SetOutput(os.Stdout)
}

// probe requests as raw packets, layouts per the CMSIS-DAP command table
var checkPackets = [][]byte{
	{0x00, 0x04},       // DAP_Info: firmware version
	{0x00, 0xF0},       // DAP_Info: capabilities
	{0x00, 0xFF},       // DAP_Info: maximum packet size
	{0x01, 0x00, 0x01}, // DAP_HostStatus: connect LED on
	{0x01, 0x00, 0x00}, // DAP_HostStatus: connect LED off
	{0x03},             // DAP_Disconnect
}

func checkDevice(dev *gousb.Device) error {
	cfg, err := dev.Config(1)

	if err != nil {
		return err
	}

	defer cfg.Close()

	intf, err := cfg.Interface(0, 0)

	if err != nil {
		return err
	}

	defer intf.Close()

	var out *gousb.OutEndpoint
	var in *gousb.InEndpoint

	for _, desc := range intf.Setting.Endpoints {
		if desc.TransferType != gousb.TransferTypeBulk {
			continue
		}

		if desc.Direction == gousb.EndpointDirectionOut && out == nil {
			out, err = intf.OutEndpoint(desc.Number)
		} else if desc.Direction == gousb.EndpointDirectionIn && in == nil {
			in, err = intf.InEndpoint(desc.Number)
		}

		if err != nil {
			return err
		}
	}

	if out == nil || in == nil {
		return fmt.Errorf("device has no bulk endpoint pair")
	}

	response := make([]byte, 512)

	for _, packet := range checkPackets {
		written, err := out.Write(packet)

		if err != nil {
			return err
		}

		logger.Tracef("wrote %d byte command 0x%02x", written, packet[0])

		read, err := in.Read(response)

		if err != nil {
			return err
		}

		if read == 0 || response[0] != packet[0] {
			logger.Warnf("command 0x%02x: unexpected response % x", packet[0], response[:read])
			continue
		}

		logger.Infof("command 0x%02x -> % x", packet[0], response[:read])
	}

	return checkRegisterRead(out, in, response)
}

// checkRegisterRead connects in SWD mode, reads debug port register 0 via
// a single DAP_Transfer and interprets the status byte through the godap
// error taxonomy.
func checkRegisterRead(out *gousb.OutEndpoint, in *gousb.InEndpoint, response []byte) error {
	steps := [][]byte{
		{0x02, 0x01},             // DAP_Connect: SWD
		{0x05, 0x00, 0x01, 0x02}, // DAP_Transfer: one DP read, address 0
		{0x03},                   // DAP_Disconnect
	}

	for _, packet := range steps {
		if _, err := out.Write(packet); err != nil {
			return err
		}

		read, err := in.Read(response)

		if err != nil {
			return err
		}

		if packet[0] != 0x05 {
			continue
		}

		if read < 3 || response[0] != 0x05 {
			return fmt.Errorf("unexpected transfer response % x", response[:read])
		}

		status := response[2]

		if err := godap.AckToError(status&0x07, status&0x08 != 0); err != nil {
			logger.Warnf("register read not acknowledged: %v", err)
		} else if read >= 7 {
			logger.Infof("DP register 0 reads 0x%02x%02x%02x%02x",
				response[6], response[5], response[4], response[3])
		}
	}

	return nil
}

func main() {
	initLogger()
	godap.SetLogger(logger)

	flagLogLevel := flag.Int("LogLevel", int(logrus.InfoLevel), "Logging verbosity [0 - 7]")
	flagVid := flag.Uint("Vid", 0x0d28, "Vendor id of the probe")
	flagPid := flag.Uint("Pid", 0x0204, "Product id of the probe")

	flag.Parse()

	logger.SetLevel(logrus.Level(*flagLogLevel))
	logger.Info("Welcome to the godap probe checker...")

	err := godap.InitializeUSB()

	if err != nil {
		logger.Panic(err)
	}

	defer godap.CloseUSB()

	devices, err := godap.FindProbeDevices(
		[]gousb.ID{gousb.ID(*flagVid)},
		[]gousb.ID{gousb.ID(*flagPid)})

	if err != nil {
		logger.Fatal(err)
	}

	if len(devices) == 0 {
		logger.Fatal("could not find any CMSIS-DAP probe on your computer")
	}

	for _, dev := range devices {
		if err := checkDevice(dev); err != nil {
			logger.Errorf("probe check failed: %v", err)
		}

		dev.Close()
	}

	logger.Info("done")
}
