// dma_system_test.go - End-to-end transfers through controller, engine and memory

package main

import (
	"bytes"
	"testing"
)

func newTestSystem() (*DMASystem, *RegisterDriver) {
	sys := NewDMASystem(DEFAULT_REG_BASE, DEFAULT_REG_WIDTH, 64*1024)
	sys.Engine.AcceptLatency = 1
	sys.Engine.CompleteLatency = 1
	return sys, NewRegisterDriver(sys)
}

func TestOutboundTransferEndToEnd(t *testing.T) {
	sys, drv := newTestSystem()

	const addr, length = 0x1000, 64
	for i := uint32(0); i < length; i++ {
		sys.Mem.Write8(addr+i, uint8(i*3))
	}

	if err := drv.StartOut(addr, length); err != nil {
		t.Fatalf("StartOut: %v", err)
	}
	code, err := drv.WaitStatus(DIR_OUT)
	if err != nil {
		t.Fatalf("WaitStatus: %v", err)
	}
	if code != STATUS_DONE {
		t.Fatalf("status = %#x, want DONE", code)
	}

	if len(sys.Sink) != length {
		t.Fatalf("sink holds %d bytes, want %d", len(sys.Sink), length)
	}
	for i, b := range sys.Sink {
		if b != uint8(i*3) {
			t.Fatalf("sink[%d] = %#x, want %#x", i, b, uint8(i*3))
		}
	}

	// The terminal code was consumed by the poll that observed it.
	code, err = drv.ReadReg(REG_OUT_STATUS)
	if err != nil {
		t.Fatalf("ReadReg: %v", err)
	}
	if code != STATUS_BUSY {
		t.Fatalf("status after drain = %#x, want BUSY", code)
	}
}

func TestInboundTransferEndToEnd(t *testing.T) {
	sys, drv := newTestSystem()

	payload := []byte("payload for the inbound direction")
	sys.LoadSource(payload)

	const addr = 0x2000
	if err := drv.StartIn(addr, uint32(len(payload))); err != nil {
		t.Fatalf("StartIn: %v", err)
	}
	code, err := drv.WaitStatus(DIR_IN)
	if err != nil {
		t.Fatalf("WaitStatus: %v", err)
	}
	if code != STATUS_DONE {
		t.Fatalf("status = %#x, want DONE", code)
	}
	if got := sys.Mem.ReadBytes(addr, len(payload)); !bytes.Equal(got, payload) {
		t.Fatalf("memory = %q, want %q", got, payload)
	}
	if sys.SourceRemaining() != 0 {
		t.Fatalf("%d source bytes never consumed", sys.SourceRemaining())
	}
}

func TestInjectedErrorThenRecovery(t *testing.T) {
	sys, drv := newTestSystem()
	sys.Mem.Fill(0x100, 8, 0x5A)

	sys.Engine.InjectError(DIR_OUT, 3)
	if err := drv.StartOut(0x100, 8); err != nil {
		t.Fatalf("StartOut: %v", err)
	}
	code, err := drv.WaitStatus(DIR_OUT)
	if err != nil {
		t.Fatalf("WaitStatus: %v", err)
	}
	if code != STATUS_ERROR {
		t.Fatalf("status = %#x, want ERROR", code)
	}

	// Recovery is reissuing the register program, nothing else.
	if err := drv.StartOut(0x100, 8); err != nil {
		t.Fatalf("StartOut retry: %v", err)
	}
	code, err = drv.WaitStatus(DIR_OUT)
	if err != nil {
		t.Fatalf("WaitStatus retry: %v", err)
	}
	if code != STATUS_DONE {
		t.Fatalf("retry status = %#x, want DONE", code)
	}
}

func TestInterleavedDirectionsEndToEnd(t *testing.T) {
	sys, drv := newTestSystem()

	sys.Mem.Fill(0x100, 16, 0xA1)
	payload := bytes.Repeat([]byte{0xB2}, 32)
	sys.LoadSource(payload)

	// Interleave the two register programs write by write.
	if err := drv.WriteReg(REG_OUT_ADDR, 0x100); err != nil {
		t.Fatal(err)
	}
	if err := drv.WriteReg(REG_IN_ADDR, 0x200); err != nil {
		t.Fatal(err)
	}
	if err := drv.WriteReg(REG_OUT_LEN, 16); err != nil {
		t.Fatal(err)
	}
	if err := drv.WriteReg(REG_IN_LEN, 32); err != nil {
		t.Fatal(err)
	}

	if code, err := drv.WaitStatus(DIR_OUT); err != nil || code != STATUS_DONE {
		t.Fatalf("out: code=%#x err=%v", code, err)
	}
	if code, err := drv.WaitStatus(DIR_IN); err != nil || code != STATUS_DONE {
		t.Fatalf("in: code=%#x err=%v", code, err)
	}

	if len(sys.Sink) != 16 || sys.Sink[0] != 0xA1 {
		t.Fatalf("outbound corrupted by interleave: % x", sys.Sink)
	}
	if got := sys.Mem.ReadBytes(0x200, 32); !bytes.Equal(got, payload) {
		t.Fatalf("inbound corrupted by interleave: % x", got)
	}
}

func TestBackToBackInboundTransfersSplitSource(t *testing.T) {
	sys, drv := newTestSystem()
	sys.LoadSource([]byte{1, 2, 3, 4, 5, 6, 7, 8})

	for n, addr := range []uint32{0x100, 0x200} {
		if err := drv.StartIn(addr, 4); err != nil {
			t.Fatalf("StartIn %d: %v", n, err)
		}
		if code, err := drv.WaitStatus(DIR_IN); err != nil || code != STATUS_DONE {
			t.Fatalf("transfer %d: code=%#x err=%v", n, code, err)
		}
	}

	want := []byte{1, 2, 3, 4}
	if got := sys.Mem.ReadBytes(0x100, 4); !bytes.Equal(got, want) {
		t.Fatalf("first transfer wrote % x", got)
	}
	want = []byte{5, 6, 7, 8}
	if got := sys.Mem.ReadBytes(0x200, 4); !bytes.Equal(got, want) {
		t.Fatalf("second transfer replayed or skipped source bytes: % x", got)
	}
}

func TestZeroLengthTransferCompletes(t *testing.T) {
	sys, drv := newTestSystem()

	if err := drv.StartOut(0x100, 0); err != nil {
		t.Fatalf("StartOut: %v", err)
	}
	code, err := drv.WaitStatus(DIR_OUT)
	if err != nil {
		t.Fatalf("WaitStatus: %v", err)
	}
	if code != STATUS_DONE {
		t.Fatalf("status = %#x, want DONE", code)
	}
	if len(sys.Sink) != 0 {
		t.Fatalf("zero-length transfer moved %d bytes", len(sys.Sink))
	}
}

// The documented scenario: Out.Address=0x1000, Out.Length=64, engine
// completes clean, first status read returns Done, the next returns Busy.
func TestDocumentedScenario(t *testing.T) {
	sys, drv := newTestSystem()
	sys.Mem.Fill(0x1000, 64, 0xEE)

	if err := drv.WriteReg(REG_OUT_ADDR, 0x1000); err != nil {
		t.Fatal(err)
	}
	if err := drv.WriteReg(REG_OUT_LEN, 64); err != nil {
		t.Fatal(err)
	}

	code, err := drv.WaitStatus(DIR_OUT)
	if err != nil {
		t.Fatalf("WaitStatus: %v", err)
	}
	if code != STATUS_DONE {
		t.Fatalf("first terminal read = %#x, want DONE(0x3)", code)
	}
	next, err := drv.ReadReg(REG_OUT_STATUS)
	if err != nil {
		t.Fatal(err)
	}
	if next != STATUS_BUSY {
		t.Fatalf("next read = %#x, want BUSY(0x1)", next)
	}
}

func TestSystemReset(t *testing.T) {
	sys, drv := newTestSystem()
	sys.Mem.Fill(0x100, 8, 0x11)
	if err := drv.StartOut(0x100, 8); err != nil {
		t.Fatal(err)
	}
	if _, err := drv.WaitStatus(DIR_OUT); err != nil {
		t.Fatal(err)
	}

	sys.Reset()

	if sys.Cycle() != 0 || len(sys.Sink) != 0 {
		t.Fatalf("reset left cycle=%d sink=%d", sys.Cycle(), len(sys.Sink))
	}
	if sys.Mem.Read8(0x100) != 0 {
		t.Fatalf("memory survived reset")
	}
	code, err := drv.ReadReg(REG_OUT_STATUS)
	if err != nil {
		t.Fatal(err)
	}
	if code != STATUS_BUSY {
		t.Fatalf("status after reset = %#x, want BUSY", code)
	}
}
