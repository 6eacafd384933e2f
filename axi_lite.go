// axi_lite.go - Beat types and the always-ready command channel adapter

/*
The upstream command channel is an addressed request/response protocol with
five channels: write-address, write-data, write-response, read-address and
read-data. Each channel carries at most one beat per step, gated by a
valid/ready pair. The control plane asserts ready on all three request
channels unconditionally, so a presented beat is always accepted on the step
it appears; serialization is the caller's job. Responses are one-step pulses
and assume the upstream side is always ready to take them.
*/

package main

// AddrBeat is one beat on the write-address or read-address channel.
type AddrBeat struct {
	Valid bool
	Addr  uint32
}

// DataBeat is one beat on the write-data channel. Strb carries one enable
// bit per byte lane; disabled lanes leave the addressed register byte
// untouched.
type DataBeat struct {
	Valid bool
	Data  uint32
	Strb  uint8
}

// RespBeat is one beat on the write-response channel.
type RespBeat struct {
	Valid bool
	Resp  uint8
}

// ReadBeat is one beat on the read-data channel.
type ReadBeat struct {
	Valid bool
	Data  uint32
	Resp  uint8
}

// DescBeat is one beat on a descriptor channel toward the transfer engine.
// Ownership of the descriptor passes to the engine on handoff.
type DescBeat struct {
	Valid bool
	Addr  uint32
	Len   uint32
	Tag   uint32
}

// CompBeat is one beat on a completion channel from the transfer engine.
// A nonzero ErrCode marks the transfer as failed.
type CompBeat struct {
	Valid   bool
	Tag     uint32
	ErrCode uint32
}

// StreamBeat is one beat on a payload byte stream. The streams pass through
// the control plane untouched; only the engine and its peers look at them.
type StreamBeat struct {
	Valid bool
	Data  uint8
	Last  bool
}

// busEvents is the adapter's report for one step: at most one accepted beat
// per request channel.
type busEvents struct {
	aw AddrBeat
	w  DataBeat
	ar AddrBeat
}

// commandPort holds the input latches the caller loads before a step. The
// adapter consumes them on sample(), which models the unconditional ready:
// whatever was presented is taken and the latches clear.
type commandPort struct {
	AW AddrBeat
	W  DataBeat
	AR AddrBeat
}

func (p *commandPort) sample() busEvents {
	ev := busEvents{aw: p.AW, w: p.W, ar: p.AR}
	p.AW = AddrBeat{}
	p.W = DataBeat{}
	p.AR = AddrBeat{}
	return ev
}

// fullStrobe returns the write-data strobe mask enabling all lanes of a
// register of the given byte width.
func fullStrobe(width uint32) uint8 {
	return uint8(1<<width - 1)
}

// mergeStrobe replaces the enabled byte lanes of old with the matching lanes
// of data.
func mergeStrobe(old, data uint32, strb uint8, width uint32) uint32 {
	v := old
	for i := uint32(0); i < width && i < 4; i++ {
		if strb&(1<<i) != 0 {
			shift := i * 8
			v = v&^(0xFF<<shift) | data&(0xFF<<shift)
		}
	}
	return v
}
