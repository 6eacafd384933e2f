// dma_system.go - Wires controller, engine, memory and the payload stream endpoints into one clocked system

package main

// DMASystem owns one controller/engine pair over shared system memory plus
// the two payload stream endpoints: an always-ready sink draining the
// outbound stream and a byte-slice source feeding the inbound stream. Step
// advances the whole system by one clock, shuttling the handshake signals
// between the components in dependency order.
type DMASystem struct {
	Mem    *SystemMemory
	Ctrl   *DMAController
	Engine *TransferEngine

	// Sink accumulates every byte drained from the outbound stream.
	Sink []byte

	source []byte
	srcPos int
	cycle  uint64
}

func NewDMASystem(base, width uint32, memSize int) *DMASystem {
	mem := NewSystemMemory(memSize)
	return &DMASystem{
		Mem:    mem,
		Ctrl:   NewDMAController(base, width),
		Engine: NewTransferEngine(mem),
	}
}

// LoadSource queues bytes for the inbound stream. Appends to anything not
// yet consumed.
func (s *DMASystem) LoadSource(p []byte) {
	s.source = append(s.source, p...)
}

// SourceRemaining reports how many queued inbound bytes are still unsent.
func (s *DMASystem) SourceRemaining() int {
	return len(s.source) - s.srcPos
}

// Cycle returns the number of steps taken since construction or reset.
func (s *DMASystem) Cycle() uint64 { return s.cycle }

// Step advances controller and engine by one clock step.
func (s *DMASystem) Step() {
	// Engine outputs of the previous step become controller inputs.
	for i := range s.Ctrl.DescReady {
		s.Ctrl.DescReady[i] = s.Engine.DescReady[i]
		if s.Engine.Comp[i].Valid {
			s.Ctrl.Comp[i] = s.Engine.Comp[i]
		}
	}
	s.Ctrl.Step()

	// Stream endpoints: the sink never stalls, the source presents its
	// next byte whenever the engine asserted ready last step.
	s.Engine.OutStreamReady = true
	fed := false
	if s.Engine.InStreamReady && s.srcPos < len(s.source) {
		s.Engine.InStream = StreamBeat{
			Valid: true,
			Data:  s.source[s.srcPos],
			Last:  s.srcPos == len(s.source)-1,
		}
		fed = true
	} else {
		// Never leave a beat latched across steps the engine was not
		// offered it; a stale beat would replay on the next transfer.
		s.Engine.InStream = StreamBeat{}
	}

	s.Engine.Step(s.Ctrl)

	if s.Engine.OutStream.Valid {
		s.Sink = append(s.Sink, s.Engine.OutStream.Data)
	}
	if fed && !s.Engine.InStream.Valid {
		s.srcPos++
	}
	s.cycle++
}

// StepN advances the system n steps.
func (s *DMASystem) StepN(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}
