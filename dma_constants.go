// dma_constants.go - Register map, status codes and shared limits for the DMA control plane

package main

// Register map (word indexes, byte offset = base + index*width).
// The block is six registers wide; everything past REG_IN_STATUS is
// unmapped and reads as zero.
const (
	REG_OUT_ADDR   = 0 // Outbound source address (write)
	REG_OUT_LEN    = 1 // Outbound length in bytes (write; dispatches)
	REG_OUT_STATUS = 2 // Outbound status (read)
	REG_IN_ADDR    = 3 // Inbound destination address (write)
	REG_IN_LEN     = 4 // Inbound length in bytes (write; dispatches)
	REG_IN_STATUS  = 5 // Inbound status (read)

	REG_COUNT = 6
)

// Status codes returned by the two status registers.
const (
	STATUS_BUSY  = 0x1 // No completion recorded, or the last one already read
	STATUS_ERROR = 0x2 // Engine reported a nonzero error code
	STATUS_DONE  = 0x3 // Engine completed without error
)

// Transfer directions.
const (
	DIR_OUT = 0 // Engine reads system memory, drives the outbound byte stream
	DIR_IN  = 1 // Engine drains the inbound byte stream, writes system memory

	NUM_DIRECTIONS = 2
)

// Field selected by the address phase of a compound register write.
const (
	FIELD_NONE = iota // Offset owned by no capture latch (read-only or unmapped)
	FIELD_ADDR
	FIELD_LEN
)

// Response code on the write-response and read-data channels. The command
// channel has no error path: undefined offsets ack OK on write and read
// back zero.
const RESP_OKAY = 0x0

// Instance defaults used by the frontend and the test helpers.
const (
	DEFAULT_REG_BASE   = 0xF0F00
	DEFAULT_REG_WIDTH  = 4
	DEFAULT_MEM_SIZE   = 1 * 1024 * 1024
	DEFAULT_POLL_STEPS = 4096
)

func dirName(dir int) string {
	if dir == DIR_OUT {
		return "out"
	}
	return "in"
}
