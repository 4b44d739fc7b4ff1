package message

import (
	"time"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// GetStateSummaryFrontier asks a peer for its latest state summary.
type GetStateSummaryFrontier struct {
	ChainID   ids.ID
	RequestID uint32
	Deadline  time.Duration
}

func (GetStateSummaryFrontier) Op() Op         { return OpGetStateSummaryFrontier }
func (GetStateSummaryFrontier) String() string { return "msg get_state_summary_frontier" }

func (m GetStateSummaryFrontier) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
}

// StateSummaryFrontier answers GetStateSummaryFrontier with one summary.
type StateSummaryFrontier struct {
	ChainID   ids.ID
	RequestID uint32
	Summary   []byte
}

func (StateSummaryFrontier) Op() Op         { return OpStateSummaryFrontier }
func (StateSummaryFrontier) String() string { return "msg state_summary_frontier" }

func (m StateSummaryFrontier) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	p.PackBytesWithHeader(m.Summary)
}

// GetAcceptedStateSummary asks for the summaries accepted at Heights.
type GetAcceptedStateSummary struct {
	ChainID   ids.ID
	RequestID uint32
	Deadline  time.Duration
	Heights   []uint64
}

func (GetAcceptedStateSummary) Op() Op         { return OpGetAcceptedStateSummary }
func (GetAcceptedStateSummary) String() string { return "msg get_accepted_state_summary" }

func (m GetAcceptedStateSummary) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
	packU64s(p, m.Heights)
}

// AcceptedStateSummary answers GetAcceptedStateSummary with the IDs of the
// summaries the peer accepted.
type AcceptedStateSummary struct {
	ChainID    ids.ID
	RequestID  uint32
	SummaryIDs []ids.ID
}

func (AcceptedStateSummary) Op() Op         { return OpAcceptedStateSummary }
func (AcceptedStateSummary) String() string { return "msg accepted_state_summary" }

func (m AcceptedStateSummary) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packIDs(p, m.SummaryIDs)
}
