// Command gen-stream serves a synthetic depth-camera frame stream over TCP
// (or writes it to a file) for testing the monitor without hardware.
//
// The generated scene is a flat wall that approaches the camera at a fixed
// speed, which drives the center zone through warn status and into a
// qualifying time-to-collision.
//
// Usage:
//
//	go run ./cmd/tools/gen-stream [flags]
//
// Flags:
//
//	-addr     Listen address (default: 127.0.0.1:9000); empty with -out writes a file
//	-out      Write the raw stream to a file instead of serving TCP
//	-frames   Number of frames to emit (default: 300)
//	-fps      Frame rate when serving (default: 30)
//	-width    Depth frame width (default: 640)
//	-height   Depth frame height (default: 480)
//	-start    Initial wall distance in millimetres (default: 5000)
//	-speed    Approach speed in mm per frame (default: 10)
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/banshee-data/hazard.monitor/internal/camstream"
)

var (
	addr     = flag.String("addr", "127.0.0.1:9000", "Listen address")
	outPath  = flag.String("out", "", "Write raw stream to this file instead of serving TCP")
	frames   = flag.Int("frames", 300, "Number of frames to emit")
	fps      = flag.Int("fps", 30, "Frame rate when serving over TCP")
	width    = flag.Int("width", 640, "Depth frame width")
	height   = flag.Int("height", 480, "Depth frame height")
	startMM  = flag.Int("start", 5000, "Initial wall distance (mm)")
	speedMM  = flag.Int("speed", 10, "Approach speed (mm per frame)")
	floorMM  = 200 // the wall stops here, inside the sensor's valid band
)

// writeFrame emits one wire frame: a depth-only scene of a flat wall at
// distanceMM with mild per-column variation so zone minima differ.
func writeFrame(w io.Writer, frameID uint32, distanceMM int) error {
	depth := make([]byte, *width**height*camstream.BytesPerDepthSample)
	for row := 0; row < *height; row++ {
		for col := 0; col < *width; col++ {
			// side columns read slightly farther than the center
			offset := 0
			if col < *width*3/10 || col >= *width*7/10 {
				offset = 500
			}
			raw := uint16(distanceMM + offset)
			binary.LittleEndian.PutUint16(depth[(row**width+col)*2:], raw)
		}
	}

	header := camstream.FrameHeader{
		Timestamp:   uint64(time.Now().UnixMilli()),
		FrameID:     frameID,
		DepthWidth:  uint32(*width),
		DepthHeight: uint32(*height),
		DepthSize:   uint32(len(depth)),
	}
	encoded := header.Encode()
	if _, err := w.Write(encoded[:]); err != nil {
		return err
	}
	_, err := w.Write(depth)
	return err
}

func emitStream(w io.Writer, delay time.Duration) error {
	distance := *startMM
	for i := 0; i < *frames; i++ {
		if err := writeFrame(w, uint32(i+1), distance); err != nil {
			return err
		}
		distance -= *speedMM
		if distance < floorMM {
			distance = floorMM
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}

func main() {
	flag.Parse()

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		if err := emitStream(bw, 0); err != nil {
			log.Fatalf("Failed to write stream: %v", err)
		}
		if err := bw.Flush(); err != nil {
			log.Fatalf("Failed to flush stream: %v", err)
		}
		log.Printf("Wrote %d frames to %s", *frames, *outPath)
		return
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *addr, err)
	}
	defer ln.Close()
	log.Printf("Serving %d synthetic frames on %s at %d fps", *frames, *addr, *fps)

	delay := time.Second / time.Duration(*fps)
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Fatalf("Accept failed: %v", err)
		}
		log.Printf("Client connected from %s", conn.RemoteAddr())

		if err := emitStream(conn, delay); err != nil {
			log.Printf("Stream to %s ended early: %v", conn.RemoteAddr(), err)
		} else {
			log.Printf("Stream to %s complete", conn.RemoteAddr())
		}
		conn.Close()
	}
}
