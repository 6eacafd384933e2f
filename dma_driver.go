// dma_driver.go - Transaction-level register driver over the stepped system

/*
RegisterDriver is the software side of the register program: each call loads
the command channel latches, runs the clock until the matching response
lands and returns the result. It mirrors the classic driver shape for this
register block: store address, store length, poll status until the engine
reports back.
*/

package main

import (
	"github.com/golang/glog"
	"github.com/juju/errors"
)

// ErrStatusTimeout is returned when a status poll exhausts its step budget
// without leaving Busy.
var ErrStatusTimeout = errors.New("status poll timed out")

// ErrNoResponse is returned when a register access sees no response beat
// within the driver timeout. With an always-ready command channel this only
// happens if the clock is not being driven correctly.
var ErrNoResponse = errors.New("no response on command channel")

type RegisterDriver struct {
	sys *DMASystem

	// Timeout bounds the steps a single register access may take;
	// PollSteps bounds a full status poll.
	Timeout   int
	PollSteps int
}

func NewRegisterDriver(sys *DMASystem) *RegisterDriver {
	return &RegisterDriver{sys: sys, Timeout: 16, PollSteps: DEFAULT_POLL_STEPS}
}

// WriteReg writes one register as a compound access: address beat and data
// beat on the same step, then wait for the write response.
func (d *RegisterDriver) WriteReg(reg int, value uint32) error {
	c := d.sys.Ctrl
	c.AW = AddrBeat{Valid: true, Addr: c.RegAddr(reg)}
	c.W = DataBeat{Valid: true, Data: value, Strb: fullStrobe(c.Width())}
	for i := 0; i < d.Timeout; i++ {
		d.sys.Step()
		if c.B.Valid {
			glog.V(2).Infof("driver: wr reg=%d val=%#x resp=%#x", reg, value, c.B.Resp)
			return nil
		}
	}
	return errors.Annotatef(ErrNoResponse, "write reg %d", reg)
}

// ReadReg reads one register: address beat, then wait for read data.
func (d *RegisterDriver) ReadReg(reg int) (uint32, error) {
	c := d.sys.Ctrl
	c.AR = AddrBeat{Valid: true, Addr: c.RegAddr(reg)}
	for i := 0; i < d.Timeout; i++ {
		d.sys.Step()
		if c.R.Valid {
			glog.V(2).Infof("driver: rd reg=%d val=%#x", reg, c.R.Data)
			return c.R.Data, nil
		}
	}
	return 0, errors.Annotatef(ErrNoResponse, "read reg %d", reg)
}

// StartOut arms and dispatches an outbound transfer.
func (d *RegisterDriver) StartOut(addr, length uint32) error {
	if err := d.WriteReg(REG_OUT_ADDR, addr); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(d.WriteReg(REG_OUT_LEN, length))
}

// StartIn arms and dispatches an inbound transfer.
func (d *RegisterDriver) StartIn(addr, length uint32) error {
	if err := d.WriteReg(REG_IN_ADDR, addr); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(d.WriteReg(REG_IN_LEN, length))
}

// statusReg maps a direction to its status register index.
func statusReg(dir int) int {
	if dir == DIR_OUT {
		return REG_OUT_STATUS
	}
	return REG_IN_STATUS
}

// WaitStatus polls dir's status register until it leaves Busy and returns
// the terminal code. The terminal code is consumed by the read that
// observed it; the next poll starts from Busy again.
func (d *RegisterDriver) WaitStatus(dir int) (uint32, error) {
	reg := statusReg(dir)
	start := d.sys.Cycle()
	for d.sys.Cycle()-start < uint64(d.PollSteps) {
		code, err := d.ReadReg(reg)
		if err != nil {
			return 0, errors.Trace(err)
		}
		if code != STATUS_BUSY {
			glog.V(1).Infof("driver: %s status %#x after %d cycles", dirName(dir), code, d.sys.Cycle())
			return code, nil
		}
	}
	return 0, errors.Annotatef(ErrStatusTimeout, "%s transfer", dirName(dir))
}
