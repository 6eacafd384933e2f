// component_reset.go - Reset() methods for all stateful components (hard reset support)

package main

// DMAController.Reset restores constructor defaults: capture latch cleared,
// descriptor and status slots emptied, response delay lines flushed. The
// register base and width are instance configuration and survive.
func (c *DMAController) Reset() {
	c.commandPort = commandPort{}
	c.B = RespBeat{}
	c.R = ReadBeat{}
	c.pending = pendingWrite{}
	c.bNext = false
	c.rNext = readReturn{commitDir: -1}
	c.commitDir = -1
	for i := range c.dirs {
		c.dirs[i] = dmaDirection{}
		c.Desc[i] = DescBeat{}
		c.DescReady[i] = false
		c.DescFire[i] = DescBeat{}
		c.Comp[i] = CompBeat{}
	}
}

// TransferEngine.Reset drops any in-flight transfer and injected faults.
// Latency configuration survives.
func (e *TransferEngine) Reset() {
	e.OutStream = StreamBeat{}
	e.OutStreamReady = false
	e.InStream = StreamBeat{}
	e.InStreamReady = false
	for i := range e.dirs {
		e.dirs[i] = engineDirection{}
		e.DescReady[i] = false
		e.Comp[i] = CompBeat{}
		e.injected[i] = 0
	}
}

// SystemMemory.Reset zeroes the whole block in place.
func (m *SystemMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.data {
		m.data[i] = 0
	}
}

// DMASystem.Reset hard-resets every component and drops the stream
// endpoints' buffered state.
func (s *DMASystem) Reset() {
	s.Ctrl.Reset()
	s.Engine.Reset()
	s.Mem.Reset()
	s.Sink = nil
	s.source = nil
	s.srcPos = 0
	s.cycle = 0
}
