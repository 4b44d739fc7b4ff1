// Package msgjson converts JSON message descriptions into message values.
//
// A description names the op and carries the fields of that op:
//
//	{"op": "get", "chainId": "11111111111111111111111111111111LpoYY",
//	 "requestId": 7, "deadline": "10s", "containerId": "0x00...0101"}
//
// IDs are cb58 or 0x-prefixed hex. Byte fields are standard base64.
// Deadlines are Go duration strings or integer nanoseconds. Fields that do
// not belong to the named op are ignored; unknown keys are rejected.
package msgjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"time"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/message"
)

// Description errors.
var (
	ErrNotWireOp    = errors.New("msgjson: op has no wire encoding")
	ErrMissingOp    = errors.New("msgjson: missing op")
	ErrInvalidField = errors.New("msgjson: invalid field")
)

// Duration accepts "10s"-style strings or integer nanoseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("deadline must be a duration string or nanoseconds: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Peer is one peerlist entry.
type Peer struct {
	Cert []byte `json:"cert"`
	IP   string `json:"ip"`
	Time uint64 `json:"time"`
	Sig  []byte `json:"sig"`
}

// Description is the JSON form of any wire message.
type Description struct {
	Op string `json:"op"`

	ChainID      ids.ID   `json:"chainId"`
	RequestID    uint32   `json:"requestId"`
	Deadline     Duration `json:"deadline"`
	ContainerID  ids.ID   `json:"containerId"`
	ContainerIDs []ids.ID `json:"containerIds,omitempty"`
	Containers   [][]byte `json:"containers,omitempty"`
	Container    []byte   `json:"container,omitempty"`

	AppBytes []byte `json:"appBytes,omitempty"`

	Summary    []byte   `json:"summary,omitempty"`
	Heights    []uint64 `json:"heights,omitempty"`
	SummaryIDs []ids.ID `json:"summaryIds,omitempty"`

	UptimePct uint8 `json:"uptimePct,omitempty"`

	NetworkID      uint32   `json:"networkId,omitempty"`
	MyTime         uint64   `json:"myTime,omitempty"`
	IP             string   `json:"ip,omitempty"`
	MyVersion      string   `json:"myVersion,omitempty"`
	MyVersionTime  uint64   `json:"myVersionTime,omitempty"`
	Sig            []byte   `json:"sig,omitempty"`
	TrackedSubnets []ids.ID `json:"trackedSubnets,omitempty"`

	Peers            []Peer `json:"peers,omitempty"`
	BypassThrottling bool   `json:"bypassThrottling,omitempty"`
}

// Parse decodes one description and builds the message it names.
func Parse(data []byte) (message.Message, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one description from r.
func Decode(r io.Reader) (message.Message, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d Description
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return d.Message()
}

// Message builds the message value named by d.Op.
func (d *Description) Message() (message.Message, error) {
	if d.Op == "" {
		return nil, ErrMissingOp
	}
	op, err := message.Lookup(d.Op)
	if err != nil {
		return nil, err
	}
	if op.IsInternal() {
		return nil, fmt.Errorf("%w: %s", ErrNotWireOp, op)
	}

	deadline := time.Duration(d.Deadline)

	switch op {
	case message.OpPing:
		return message.Ping{}, nil
	case message.OpPong:
		return message.Pong{UptimePct: d.UptimePct}, nil
	case message.OpVersion:
		ip, err := parseIP("ip", d.IP)
		if err != nil {
			return nil, err
		}
		return message.Version{
			NetworkID:      d.NetworkID,
			MyTime:         d.MyTime,
			IP:             ip,
			MyVersion:      d.MyVersion,
			MyVersionTime:  d.MyVersionTime,
			Sig:            d.Sig,
			TrackedSubnets: d.TrackedSubnets,
		}, nil
	case message.OpPeerList:
		peers := make([]message.ClaimedIPPort, len(d.Peers))
		for i, p := range d.Peers {
			ip, err := parseIP(fmt.Sprintf("peers[%d].ip", i), p.IP)
			if err != nil {
				return nil, err
			}
			peers[i] = message.ClaimedIPPort{
				Certificate: p.Cert,
				IP:          ip,
				Timestamp:   p.Time,
				Signature:   p.Sig,
			}
		}
		return message.PeerList{Peers: peers, BypassThrottling: d.BypassThrottling}, nil

	case message.OpGetAcceptedFrontier:
		return message.GetAcceptedFrontier{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline}, nil
	case message.OpAcceptedFrontier:
		return message.AcceptedFrontier{ChainID: d.ChainID, RequestID: d.RequestID, ContainerIDs: d.ContainerIDs}, nil
	case message.OpGetAccepted:
		return message.GetAccepted{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline, ContainerIDs: d.ContainerIDs}, nil
	case message.OpAccepted:
		return message.Accepted{ChainID: d.ChainID, RequestID: d.RequestID, ContainerIDs: d.ContainerIDs}, nil
	case message.OpGetAncestors:
		return message.GetAncestors{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline, ContainerID: d.ContainerID}, nil
	case message.OpAncestors:
		return message.Ancestors{ChainID: d.ChainID, RequestID: d.RequestID, Containers: d.Containers}, nil

	case message.OpGet:
		return message.Get{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline, ContainerID: d.ContainerID}, nil
	case message.OpPut:
		return message.Put{ChainID: d.ChainID, RequestID: d.RequestID, ContainerID: d.ContainerID, Container: d.Container}, nil
	case message.OpPushQuery:
		return message.PushQuery{
			ChainID:     d.ChainID,
			RequestID:   d.RequestID,
			Deadline:    deadline,
			ContainerID: d.ContainerID,
			Container:   d.Container,
		}, nil
	case message.OpPullQuery:
		return message.PullQuery{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline, ContainerID: d.ContainerID}, nil
	case message.OpChits:
		return message.Chits{ChainID: d.ChainID, RequestID: d.RequestID, ContainerIDs: d.ContainerIDs}, nil
	case message.OpChitsV2:
		return message.ChitsV2{
			ChainID:      d.ChainID,
			RequestID:    d.RequestID,
			ContainerIDs: d.ContainerIDs,
			ContainerID:  d.ContainerID,
		}, nil

	case message.OpAppRequest:
		return message.AppRequest{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline, AppBytes: d.AppBytes}, nil
	case message.OpAppResponse:
		return message.AppResponse{ChainID: d.ChainID, RequestID: d.RequestID, AppBytes: d.AppBytes}, nil
	case message.OpAppGossip:
		return message.AppGossip{ChainID: d.ChainID, AppBytes: d.AppBytes}, nil

	case message.OpGetStateSummaryFrontier:
		return message.GetStateSummaryFrontier{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline}, nil
	case message.OpStateSummaryFrontier:
		return message.StateSummaryFrontier{ChainID: d.ChainID, RequestID: d.RequestID, Summary: d.Summary}, nil
	case message.OpGetAcceptedStateSummary:
		return message.GetAcceptedStateSummary{ChainID: d.ChainID, RequestID: d.RequestID, Deadline: deadline, Heights: d.Heights}, nil
	case message.OpAcceptedStateSummary:
		return message.AcceptedStateSummary{ChainID: d.ChainID, RequestID: d.RequestID, SummaryIDs: d.SummaryIDs}, nil
	}

	return nil, fmt.Errorf("%w: %s", message.ErrUnknownOp, op)
}

func parseIP(field, s string) (netip.AddrPort, error) {
	ip, err := netip.ParseAddrPort(s)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %s: %v", ErrInvalidField, field, err)
	}
	return ip, nil
}
