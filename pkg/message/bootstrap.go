package message

import (
	"time"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// GetAcceptedFrontier asks a peer for its accepted frontier on a chain.
type GetAcceptedFrontier struct {
	ChainID   ids.ID
	RequestID uint32
	Deadline  time.Duration
}

func (GetAcceptedFrontier) Op() Op         { return OpGetAcceptedFrontier }
func (GetAcceptedFrontier) String() string { return "msg get_accepted_frontier" }

func (m GetAcceptedFrontier) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
}

// AcceptedFrontier answers GetAcceptedFrontier.
type AcceptedFrontier struct {
	ChainID      ids.ID
	RequestID    uint32
	ContainerIDs []ids.ID
}

func (AcceptedFrontier) Op() Op         { return OpAcceptedFrontier }
func (AcceptedFrontier) String() string { return "msg accepted_frontier" }

func (m AcceptedFrontier) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packIDs(p, m.ContainerIDs)
}

// GetAccepted asks which of ContainerIDs the peer has accepted.
type GetAccepted struct {
	ChainID      ids.ID
	RequestID    uint32
	Deadline     time.Duration
	ContainerIDs []ids.ID
}

func (GetAccepted) Op() Op         { return OpGetAccepted }
func (GetAccepted) String() string { return "msg get_accepted" }

func (m GetAccepted) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
	packIDs(p, m.ContainerIDs)
}

// Accepted answers GetAccepted.
type Accepted struct {
	ChainID      ids.ID
	RequestID    uint32
	ContainerIDs []ids.ID
}

func (Accepted) Op() Op         { return OpAccepted }
func (Accepted) String() string { return "msg accepted" }

func (m Accepted) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packIDs(p, m.ContainerIDs)
}

// GetAncestors asks for a container and as many of its ancestors as fit in
// one Ancestors response.
type GetAncestors struct {
	ChainID     ids.ID
	RequestID   uint32
	Deadline    time.Duration
	ContainerID ids.ID
}

func (GetAncestors) Op() Op         { return OpGetAncestors }
func (GetAncestors) String() string { return "msg get_ancestors" }

func (m GetAncestors) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
	packID(p, m.ContainerID)
}

// Ancestors answers GetAncestors with raw containers, requested one first.
type Ancestors struct {
	ChainID    ids.ID
	RequestID  uint32
	Containers [][]byte
}

func (Ancestors) Op() Op         { return OpAncestors }
func (Ancestors) String() string { return "msg ancestors" }

func (m Ancestors) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packBlobs(p, m.Containers)
}
