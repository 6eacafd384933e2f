// monitor.go - Interactive register monitor on raw stdin

/*
The monitor gives a line-oriented console for poking the register block and
watching the system run. Only instantiated in main.go for interactive use —
never in tests. Stdin goes raw for the session; term.Terminal supplies line
editing on top.
*/

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"golang.org/x/term"
)

type Monitor struct {
	sys *DMASystem
	drv *RegisterDriver
}

func NewMonitor(sys *DMASystem, drv *RegisterDriver) *Monitor {
	return &Monitor{sys: sys, drv: drv}
}

var regNames = map[string]int{
	"outaddr": REG_OUT_ADDR,
	"outlen":  REG_OUT_LEN,
	"outstat": REG_OUT_STATUS,
	"inaddr":  REG_IN_ADDR,
	"inlen":   REG_IN_LEN,
	"instat":  REG_IN_STATUS,
}

// parseReg accepts a register name or a numeric register index.
func parseReg(s string) (int, error) {
	if reg, ok := regNames[strings.ToLower(s)]; ok {
		return reg, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil || n >= REG_COUNT {
		return 0, errors.Errorf("unknown register %q", s)
	}
	return int(n), nil
}

func parseVal(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "bad value %q", s)
	}
	return uint32(n), nil
}

// Run takes stdin raw and serves commands until quit or EOF.
func (m *Monitor) Run() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Annotate(err, "monitor: raw mode")
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "dma> ")

	fmt.Fprintf(t, "register monitor: base=%#x width=%d, 'help' for commands\n",
		m.sys.Ctrl.Base(), m.sys.Ctrl.Width())

	for {
		line, err := t.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Trace(err)
		}
		if done := m.dispatch(t, strings.Fields(line)); done {
			return nil
		}
	}
}

func (m *Monitor) dispatch(w io.Writer, args []string) (quit bool) {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "q", "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprint(w, "rd <reg>              read register (outaddr outlen outstat inaddr inlen instat)\n"+
			"wr <reg> <val>        write register\n"+
			"st out|in             poll status until terminal\n"+
			"step [n]              advance the clock\n"+
			"mem <addr> [n]        dump memory\n"+
			"fill <addr> <n> <v>   fill memory\n"+
			"src <text>            queue inbound stream bytes\n"+
			"sink                  show drained outbound bytes\n"+
			"reset                 hard reset\n"+
			"q                     quit\n")
	case "rd":
		if len(args) != 2 {
			fmt.Fprintln(w, "usage: rd <reg>")
			break
		}
		reg, err := parseReg(args[1])
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		val, err := m.drv.ReadReg(reg)
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		fmt.Fprintf(w, "%s = %#x\n", args[1], val)
	case "wr":
		if len(args) != 3 {
			fmt.Fprintln(w, "usage: wr <reg> <val>")
			break
		}
		reg, err := parseReg(args[1])
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		val, err := parseVal(args[2])
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		if err := m.drv.WriteReg(reg, val); err != nil {
			fmt.Fprintln(w, err)
		}
	case "st":
		if len(args) != 2 || (args[1] != "out" && args[1] != "in") {
			fmt.Fprintln(w, "usage: st out|in")
			break
		}
		dir := DIR_OUT
		if args[1] == "in" {
			dir = DIR_IN
		}
		code, err := m.drv.WaitStatus(dir)
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		fmt.Fprintf(w, "%s status %#x (%s)\n", args[1], code, statusName(code))
	case "step":
		n := 1
		if len(args) == 2 {
			if v, err := parseVal(args[1]); err == nil {
				n = int(v)
			}
		}
		m.sys.StepN(n)
		fmt.Fprintf(w, "cycle %d\n", m.sys.Cycle())
	case "mem":
		if len(args) < 2 {
			fmt.Fprintln(w, "usage: mem <addr> [n]")
			break
		}
		addr, err := parseVal(args[1])
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		n := uint32(16)
		if len(args) == 3 {
			if v, err := parseVal(args[2]); err == nil {
				n = v
			}
		}
		fmt.Fprintf(w, "%#06x: % x\n", addr, m.sys.Mem.ReadBytes(addr, int(n)))
	case "fill":
		if len(args) != 4 {
			fmt.Fprintln(w, "usage: fill <addr> <n> <v>")
			break
		}
		addr, err1 := parseVal(args[1])
		n, err2 := parseVal(args[2])
		v, err3 := parseVal(args[3])
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprintln(w, "fill: bad argument")
			break
		}
		m.sys.Mem.Fill(addr, int(n), uint8(v))
	case "src":
		if len(args) == 2 {
			m.sys.LoadSource([]byte(args[1]))
		}
	case "sink":
		fmt.Fprintf(w, "% x\n", m.sys.Sink)
	case "reset":
		m.sys.Reset()
		fmt.Fprintln(w, "reset")
	default:
		fmt.Fprintf(w, "unknown command %q, 'help' for commands\n", args[0])
	}
	return false
}

func statusName(code uint32) string {
	switch code {
	case STATUS_BUSY:
		return "busy"
	case STATUS_DONE:
		return "done"
	case STATUS_ERROR:
		return "error"
	default:
		return "?"
	}
}
