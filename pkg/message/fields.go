package message

import (
	"time"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// Shared field writers. Lists are a u32 count followed by the elements.

func packID(p *packer.Packer, id ids.ID) {
	p.PackBytes(id[:])
}

func packIDs(p *packer.Packer, list []ids.ID) {
	p.PackU32(uint32(len(list)))
	for i := range list {
		p.PackBytes(list[i][:])
	}
}

// packDeadline writes d as u64 nanoseconds. Negative durations become 0.
func packDeadline(p *packer.Packer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	p.PackU64(uint64(d))
}

func packU64s(p *packer.Packer, list []uint64) {
	p.PackU32(uint32(len(list)))
	for _, v := range list {
		p.PackU64(v)
	}
}

func packBlobs(p *packer.Packer, list [][]byte) {
	p.PackU32(uint32(len(list)))
	for _, b := range list {
		p.PackBytesWithHeader(b)
	}
}

// requestHeader writes the chain/request prefix shared by most engine
// messages.
func requestHeader(p *packer.Packer, chainID ids.ID, requestID uint32) {
	packID(p, chainID)
	p.PackU32(requestID)
}
