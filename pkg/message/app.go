package message

import (
	"time"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// AppRequest carries an opaque VM-level request.
type AppRequest struct {
	ChainID   ids.ID
	RequestID uint32
	Deadline  time.Duration
	AppBytes  []byte
}

func (AppRequest) Op() Op         { return OpAppRequest }
func (AppRequest) String() string { return "msg app_request" }

func (m AppRequest) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	packDeadline(p, m.Deadline)
	p.PackBytesWithHeader(m.AppBytes)
}

// AppResponse answers an AppRequest.
type AppResponse struct {
	ChainID   ids.ID
	RequestID uint32
	AppBytes  []byte
}

func (AppResponse) Op() Op         { return OpAppResponse }
func (AppResponse) String() string { return "msg app_response" }

func (m AppResponse) packFields(p *packer.Packer) {
	requestHeader(p, m.ChainID, m.RequestID)
	p.PackBytesWithHeader(m.AppBytes)
}

// AppGossip is a fire-and-forget VM-level message. It has no request ID.
type AppGossip struct {
	ChainID  ids.ID
	AppBytes []byte
}

func (AppGossip) Op() Op         { return OpAppGossip }
func (AppGossip) String() string { return "msg app_gossip" }

func (m AppGossip) packFields(p *packer.Packer) {
	packID(p, m.ChainID)
	p.PackBytesWithHeader(m.AppBytes)
}
