// Command ydscan connects to a YDLIDAR X4 on a serial port, starts
// scanning, and logs the first sample of every packet until interrupted.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/larrydcj/ydlidarx4/ydlidar"
)

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial port the lidar is attached to")
	flag.Parse()

	log := logrus.New()

	transport, err := ydlidar.OpenSerialTransport(*port)
	if err != nil {
		log.Fatalf("open %s: %v", *port, err)
	}
	defer transport.Close()

	cfg := ydlidar.DefaultConfig()
	cfg.Transport = transport
	cfg.DebugSink = log
	cfg.LogLevel = ydlidar.LogDebug
	cfg.PacketHandler = func(firstAngle, lastAngle float64, angles, ranges []float64) {
		if len(angles) == 0 {
			return
		}
		log.Infof("packet: %d samples, first angle=%.2f° range=%.1fmm", len(angles), angles[0], ranges[0])
	}

	sup := ydlidar.NewSupervisor(cfg)

	closeHandler(log, sup, transport)

	if !sup.Start() {
		log.Fatal("failed to start scan")
	}

	for {
		if err := sup.Receive(); err != nil {
			log.Debugf("receive: %v", err)
		}
		sup.Run()
		time.Sleep(10 * time.Millisecond)
	}
}

// closeHandler stops the scan and closes the transport on Ctrl+C/SIGTERM.
func closeHandler(log logrus.FieldLogger, sup *ydlidar.Supervisor, transport *ydlidar.SerialTransport) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info("shutting down")
		sup.Stop()
		transport.Close()
		os.Exit(0)
	}()
}
