package message

import (
	"time"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// Get requests a single container.
type Get struct {
	ChainID     ids.ID
	RequestID   uint32
	Deadline    time.Duration
	ContainerID ids.ID
}

func (Get) Op() Op         { return OpGet }
func (Get) String() string { return "msg get" }

func (m Get) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
	packID(p, m.ContainerID)
}

// Put delivers a container, either in answer to Get or unsolicited.
type Put struct {
	ChainID     ids.ID
	RequestID   uint32
	ContainerID ids.ID
	Container   []byte
}

func (Put) Op() Op         { return OpPut }
func (Put) String() string { return "msg put" }

func (m Put) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packID(p, m.ContainerID)
	p.PackBytesWithHeader(m.Container)
}

// PushQuery asks for the peer's preference and carries the container so the
// peer does not need to fetch it.
type PushQuery struct {
	ChainID     ids.ID
	RequestID   uint32
	Deadline    time.Duration
	ContainerID ids.ID
	Container   []byte
}

func (PushQuery) Op() Op         { return OpPushQuery }
func (PushQuery) String() string { return "msg push_query" }

func (m PushQuery) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
	packID(p, m.ContainerID)
	p.PackBytesWithHeader(m.Container)
}

// PullQuery asks for the peer's preference by container ID only.
type PullQuery struct {
	ChainID     ids.ID
	RequestID   uint32
	Deadline    time.Duration
	ContainerID ids.ID
}

func (PullQuery) Op() Op         { return OpPullQuery }
func (PullQuery) String() string { return "msg pull_query" }

func (m PullQuery) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
	packID(p, m.ContainerID)
}

// Chits answers a query with the peer's current preferences.
type Chits struct {
	ChainID      ids.ID
	RequestID    uint32
	ContainerIDs []ids.ID
}

func (Chits) Op() Op         { return OpChits }
func (Chits) String() string { return "msg chits" }

func (m Chits) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packIDs(p, m.ContainerIDs)
}

// ChitsV2 is Chits plus the preferred container of the linearized chain.
type ChitsV2 struct {
	ChainID      ids.ID
	RequestID    uint32
	ContainerIDs []ids.ID
	ContainerID  ids.ID
}

func (ChitsV2) Op() Op         { return OpChitsV2 }
func (ChitsV2) String() string { return "msg chits_v2" }

func (m ChitsV2) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packIDs(p, m.ContainerIDs)
	packID(p, m.ContainerID)
}
