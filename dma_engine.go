// dma_engine.go - Model transfer engine: descriptor consumer, byte mover, completion source

/*
TransferEngine stands in for the data-movement engine on the far side of the
descriptor handshake. It is a model, not a performance DMA: one byte moves
per step, with configurable acceptance and completion latencies so the
control plane's stall points get exercised. Outbound descriptors read system
memory and drive the outbound byte stream; inbound descriptors drain the
inbound byte stream into system memory. Completions can be poisoned with an
injected error code to exercise the error status path.
*/

package main

import "github.com/golang/glog"

const (
	engIdle       = iota // No descriptor held; arming toward ready
	engMoving            // Payload bytes in flight
	engCompleting        // Payload done; counting down to the completion beat
)

type engineDirection struct {
	state int
	wait  int
	desc  DescBeat
	pos   uint32
}

// TransferEngine models one engine serving both directions independently.
// Drive it by loading the stream-side inputs, stepping the controller, then
// stepping the engine against the controller's descriptor ports.
type TransferEngine struct {
	mem *SystemMemory

	// Steps a visible descriptor waits before ready, and steps between the
	// last payload byte and the completion beat.
	AcceptLatency   int
	CompleteLatency int

	// Controller-facing outputs.
	DescReady [NUM_DIRECTIONS]bool
	Comp      [NUM_DIRECTIONS]CompBeat

	// Payload streams. OutStream/OutStreamReady face the outbound sink;
	// InStream/InStreamReady face the inbound source.
	OutStream      StreamBeat
	OutStreamReady bool
	InStream       StreamBeat
	InStreamReady  bool

	dirs     [NUM_DIRECTIONS]engineDirection
	injected [NUM_DIRECTIONS]uint32
}

func NewTransferEngine(mem *SystemMemory) *TransferEngine {
	return &TransferEngine{mem: mem}
}

// InjectError poisons the next completion for dir with the given nonzero
// error code.
func (e *TransferEngine) InjectError(dir int, code uint32) {
	e.injected[dir] = code
}

// Busy reports whether dir currently holds a transfer.
func (e *TransferEngine) Busy(dir int) bool {
	return e.dirs[dir].state != engIdle
}

// Step advances the engine one clock step against the controller's
// descriptor and completion ports. Call after c.Step so the engine sees the
// handoff pulses of the same step.
func (e *TransferEngine) Step(c *DMAController) {
	e.OutStream = StreamBeat{}
	e.InStreamReady = false
	for i := range e.dirs {
		e.Comp[i] = CompBeat{}
	}

	for i := range e.dirs {
		d := &e.dirs[i]

		if c.DescFire[i].Valid {
			d.desc = c.DescFire[i]
			e.DescReady[i] = false
			d.pos = 0
			d.wait = 0
			d.state = engMoving
			if d.desc.Len == 0 {
				d.state = engCompleting
			}
			glog.V(2).Infof("engine: %s accepted descriptor addr=%#x len=%d tag=%d",
				dirName(i), d.desc.Addr, d.desc.Len, d.desc.Tag)
			continue
		}

		switch d.state {
		case engIdle:
			e.DescReady[i] = false
			if c.Desc[i].Valid {
				if d.wait >= e.AcceptLatency {
					e.DescReady[i] = true
				} else {
					d.wait++
				}
			} else {
				d.wait = 0
			}

		case engMoving:
			if i == DIR_OUT {
				if e.OutStreamReady {
					e.OutStream = StreamBeat{
						Valid: true,
						Data:  e.mem.Read8(d.desc.Addr + d.pos),
						Last:  d.pos == d.desc.Len-1,
					}
					d.pos++
				}
			} else {
				e.InStreamReady = true
				if e.InStream.Valid {
					e.mem.Write8(d.desc.Addr+d.pos, e.InStream.Data)
					d.pos++
					e.InStream = StreamBeat{}
				}
			}
			if d.pos == d.desc.Len {
				d.state = engCompleting
				d.wait = 0
			}

		case engCompleting:
			if d.wait < e.CompleteLatency {
				d.wait++
				break
			}
			e.Comp[i] = CompBeat{Valid: true, Tag: d.desc.Tag, ErrCode: e.injected[i]}
			if e.injected[i] != 0 {
				glog.V(2).Infof("engine: %s completed tag=%d err=%#x", dirName(i), d.desc.Tag, e.injected[i])
			}
			e.injected[i] = 0
			d.state = engIdle
			d.wait = 0
		}
	}
}
