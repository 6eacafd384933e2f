// main.go - Frontend: demo transfer, script runner and interactive monitor

package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/pflag"
)

var (
	flagBase     = pflag.Uint32("base", DEFAULT_REG_BASE, "byte address of the register block")
	flagWidth    = pflag.Uint32("width", DEFAULT_REG_WIDTH, "register width in bytes (1, 2 or 4)")
	flagMemSize  = pflag.Int("mem-size", DEFAULT_MEM_SIZE, "system memory size in bytes")
	flagAccept   = pflag.Int("accept-latency", 2, "engine descriptor acceptance latency in steps")
	flagComplete = pflag.Int("complete-latency", 2, "engine completion latency in steps")
	flagScript   = pflag.String("script", "", "run a Lua register program and exit")
	flagMonitor  = pflag.Bool("monitor", false, "start the interactive register monitor")
)

func main() {
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	pflag.Parse()
	defer glog.Flush()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	sys := NewDMASystem(*flagBase, *flagWidth, *flagMemSize)
	sys.Engine.AcceptLatency = *flagAccept
	sys.Engine.CompleteLatency = *flagComplete
	drv := NewRegisterDriver(sys)

	glog.Infof("dma control plane: base=%#x width=%d mem=%d", *flagBase, *flagWidth, *flagMemSize)

	switch {
	case *flagScript != "":
		r := NewScriptRunner(sys, drv)
		defer r.Close()
		return r.RunFile(*flagScript)
	case *flagMonitor:
		return NewMonitor(sys, drv).Run()
	default:
		return demo(sys, drv)
	}
}

// demo runs one transfer in each direction and prints what moved.
func demo(sys *DMASystem, drv *RegisterDriver) error {
	const (
		outAddr = 0x1000
		outLen  = 64
		inAddr  = 0x2000
	)

	for i := uint32(0); i < outLen; i++ {
		sys.Mem.Write8(outAddr+i, uint8(i))
	}
	if err := drv.StartOut(outAddr, outLen); err != nil {
		return err
	}
	code, err := drv.WaitStatus(DIR_OUT)
	if err != nil {
		return err
	}
	fmt.Printf("out: status %s, %d bytes on the outbound stream\n", statusName(code), len(sys.Sink))
	fmt.Printf("out: % x\n", sys.Sink)

	payload := []byte("inbound payload through the byte stream")
	sys.LoadSource(payload)
	if err := drv.StartIn(inAddr, uint32(len(payload))); err != nil {
		return err
	}
	code, err = drv.WaitStatus(DIR_IN)
	if err != nil {
		return err
	}
	fmt.Printf("in: status %s, memory at %#x: %q\n",
		statusName(code), inAddr, sys.Mem.ReadBytes(inAddr, len(payload)))
	fmt.Printf("ran %d clock steps\n", sys.Cycle())
	return nil
}
