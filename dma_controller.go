// dma_controller.go - Register-mapped command/status control plane for the transfer engine

/*
The controller turns two paired register writes per direction (address, then
length) into one work descriptor and reports engine completions through
polled status registers. It advances in atomic clock steps: every Step call
samples the command channel latches, updates the internal state machines and
produces the response beats for the step. Per step the phases are:

  1. Commit the status consumption scheduled by the read response of the
     previous step.
  2. Present the write response and read data computed on the previous step
     (fixed one-step latency on both).
  3. Sample a read-address beat against the state as of the step start.
  4. Sample the address-write and data-write beats into the capture latch
     and the per-direction descriptor slots.
  5. Hand pending descriptors to the engine where it asserts ready.
  6. Record completion beats into the per-direction status slots.

Because completions are recorded in phase 6 and the consumption commit of an
in-flight read applies in phase 1 of the following step, a completion that
lands on the same step a status read response is presented gets marked
consumed before it was ever observable. That one-step overwrite window is a
property of the register protocol, not a bug in the model; the caller
contract is to drain status before re-arming a direction.
*/

package main

// pendingWrite is the capture latch for the two-phase compound write: the
// address phase selects a direction and field, the next data phase stores
// into it. A data beat with nothing armed is dropped (still acked). A new
// address beat before the data beat re-arms the latch, last write wins.
type pendingWrite struct {
	armed bool
	dir   int // DIR_OUT, DIR_IN; meaningless when field is FIELD_NONE
	field int
}

// dmaDirection holds one direction's descriptor slot and status slot. The
// descriptor builds incrementally: baseAddr after the address write, length
// plus the valid mark after the length write. The status slot is depth one,
// single writer (engine), single reader (status read), last write wins.
type dmaDirection struct {
	baseAddr  uint32
	length    uint32
	descValid bool
	nextTag   uint32

	code     uint32 // STATUS_DONE or STATUS_ERROR once hasComp
	hasComp  bool
	consumed bool
}

// readReturn is the read-data delay slot: value sampled on the accept step,
// presented one step later. commitDir names the direction whose status slot
// the value consumed, or -1.
type readReturn struct {
	valid     bool
	data      uint32
	commitDir int
}

// DMAController is one control-plane instance. The caller loads the
// commandPort latches and the engine-facing inputs, calls Step, then reads
// the response beats and descriptor fires. Not safe for concurrent use; the
// whole model is a single synchronous domain.
type DMAController struct {
	commandPort

	base  uint32
	width uint32

	// Outputs toward the upstream command channel, valid for one step.
	B RespBeat
	R ReadBeat

	// Engine-facing ports, indexed by direction. Desc holds the pending
	// descriptor while valid; DescReady is loaded by the engine before a
	// step; DescFire pulses for one step on handoff.
	Desc      [NUM_DIRECTIONS]DescBeat
	DescReady [NUM_DIRECTIONS]bool
	DescFire  [NUM_DIRECTIONS]DescBeat

	// Completion inputs, sampled and cleared each step.
	Comp [NUM_DIRECTIONS]CompBeat

	pending   pendingWrite
	dirs      [NUM_DIRECTIONS]dmaDirection
	bNext     bool
	rNext     readReturn
	commitDir int
}

// NewDMAController returns a controller with its register block at base.
// width is the register width in bytes (1, 2 or 4) and fixes the register
// stride and the strobe lane count.
func NewDMAController(base, width uint32) *DMAController {
	c := &DMAController{base: base, width: width}
	c.commitDir = -1
	c.rNext.commitDir = -1
	return c
}

func (c *DMAController) Base() uint32  { return c.base }
func (c *DMAController) Width() uint32 { return c.width }

// RegAddr returns the byte address of a register index.
func (c *DMAController) RegAddr(reg int) uint32 {
	return c.base + uint32(reg)*c.width
}

// widthMask limits stored register values to the configured width.
func (c *DMAController) widthMask() uint32 {
	if c.width >= 4 {
		return 0xFFFFFFFF
	}
	return 1<<(8*c.width) - 1
}

// decodeReg maps a byte address to a register index, or -1 for anything
// outside the block or off-stride.
func (c *DMAController) decodeReg(addr uint32) int {
	if addr < c.base || addr >= c.base+REG_COUNT*c.width {
		return -1
	}
	off := addr - c.base
	if off%c.width != 0 {
		return -1
	}
	return int(off / c.width)
}

// decodeWrite maps a register index to the capture latch target. Only the
// four address/length registers are write-owned; status offsets and unmapped
// addresses arm nothing, which makes the following data beat a no-op.
func decodeWrite(reg int) (dir, field int) {
	switch reg {
	case REG_OUT_ADDR:
		return DIR_OUT, FIELD_ADDR
	case REG_OUT_LEN:
		return DIR_OUT, FIELD_LEN
	case REG_IN_ADDR:
		return DIR_IN, FIELD_ADDR
	case REG_IN_LEN:
		return DIR_IN, FIELD_LEN
	default:
		return 0, FIELD_NONE
	}
}

// Step advances the control plane by one clock step.
func (c *DMAController) Step() {
	// Phase 1: consumption commit for the read response presented last
	// step. Applies to whatever record sits in the slot now, which is how
	// a completion landing inside the window gets lost.
	if c.commitDir >= 0 {
		d := &c.dirs[c.commitDir]
		if d.hasComp {
			d.consumed = true
		}
		c.commitDir = -1
	}

	// Phase 2: present last step's responses.
	c.B = RespBeat{Valid: c.bNext, Resp: RESP_OKAY}
	c.bNext = false
	c.R = ReadBeat{Valid: c.rNext.valid, Data: c.rNext.data, Resp: RESP_OKAY}
	if c.rNext.valid {
		c.commitDir = c.rNext.commitDir
	}
	c.rNext = readReturn{commitDir: -1}

	ev := c.sample()

	// Phase 3: sample the read before this step's writes and completions
	// touch anything, so the returned value reflects the step start.
	if ev.ar.Valid {
		c.rNext.valid = true
		c.rNext.data, c.rNext.commitDir = c.readValue(ev.ar.Addr)
	}

	// Phase 4: compound write capture. The address beat arms, the data
	// beat stores. Every accepted data beat acks, matched or not.
	if ev.aw.Valid {
		reg := c.decodeReg(ev.aw.Addr)
		dir, field := decodeWrite(reg)
		c.pending = pendingWrite{armed: true, dir: dir, field: field}
	}
	if ev.w.Valid {
		if c.pending.armed && c.pending.field != FIELD_NONE {
			c.storeField(c.pending.dir, c.pending.field, ev.w)
		}
		c.pending.armed = false
		c.bNext = true
	}

	// Phase 5: single-cycle descriptor handoff.
	for i := range c.dirs {
		d := &c.dirs[i]
		c.Desc[i] = DescBeat{Valid: d.descValid, Addr: d.baseAddr, Len: d.length, Tag: d.nextTag}
		c.DescFire[i] = DescBeat{}
		if d.descValid && c.DescReady[i] {
			c.DescFire[i] = c.Desc[i]
			c.Desc[i].Valid = false
			d.descValid = false
			d.nextTag++
		}
	}

	// Phase 6: record completions, overwriting any unconsumed prior record.
	for i := range c.dirs {
		if !c.Comp[i].Valid {
			continue
		}
		d := &c.dirs[i]
		d.code = STATUS_DONE
		if c.Comp[i].ErrCode != 0 {
			d.code = STATUS_ERROR
		}
		d.hasComp = true
		d.consumed = false
		c.Comp[i] = CompBeat{}
	}
}

// storeField merges a data beat into the selected descriptor field. A
// length store marks the descriptor valid; storing a second length before
// the engine accepted simply rewrites the pending length.
func (c *DMAController) storeField(dir, field int, w DataBeat) {
	d := &c.dirs[dir]
	switch field {
	case FIELD_ADDR:
		d.baseAddr = mergeStrobe(d.baseAddr, w.Data, w.Strb, c.width) & c.widthMask()
	case FIELD_LEN:
		d.length = mergeStrobe(d.length, w.Data, w.Strb, c.width) & c.widthMask()
		d.descValid = true
	}
}

// readValue computes the read-data value for an address and, for a status
// register serving an unconsumed record, the direction whose consumption
// must commit one step after the response goes out. All other addresses
// read as zero.
func (c *DMAController) readValue(addr uint32) (data uint32, commitDir int) {
	var dir int
	switch c.decodeReg(addr) {
	case REG_OUT_STATUS:
		dir = DIR_OUT
	case REG_IN_STATUS:
		dir = DIR_IN
	default:
		return 0, -1
	}
	d := &c.dirs[dir]
	if !d.hasComp || d.consumed {
		return STATUS_BUSY, -1
	}
	return d.code, dir
}
