package message

import (
	"errors"
	"fmt"
)

// Op identifies a message type. Wire ops are the first byte of every frame
// body; internal ops travel only on the engine's in-process bus.
type Op uint8

const (
	// Handshake and peer gossip.
	OpPong Op = 3
	OpPing Op = 4

	// Bootstrapping.
	OpGetAcceptedFrontier Op = 6
	OpAcceptedFrontier    Op = 7
	OpGetAccepted         Op = 8
	OpAccepted            Op = 9
	OpGetAncestors        Op = 10
	OpAncestors           Op = 11

	// Consensus.
	OpGet       Op = 12
	OpPut       Op = 13
	OpPushQuery Op = 14
	OpPullQuery Op = 15
	OpChits     Op = 16

	OpPeerList Op = 18
	OpVersion  Op = 19

	// Application level.
	OpAppRequest  Op = 20
	OpAppResponse Op = 21
	OpAppGossip   Op = 22

	// State sync.
	OpGetStateSummaryFrontier Op = 23
	OpStateSummaryFrontier    Op = 24
	OpGetAcceptedStateSummary Op = 25
	OpAcceptedStateSummary    Op = 26

	// X-chain linearization.
	OpChitsV2 Op = 27

	// Internal events. Never placed on the wire.
	OpGetAcceptedFrontierFailed     Op = 30
	OpGetAcceptedFailed             Op = 31
	OpGetFailed                     Op = 32
	OpQueryFailed                   Op = 33
	OpGetAncestorsFailed            Op = 34
	OpAppRequestFailed              Op = 35
	OpTimeout                       Op = 36
	OpConnected                     Op = 37
	OpDisconnected                  Op = 38
	OpNotify                        Op = 39
	OpGossipRequest                 Op = 40
	OpGetStateSummaryFrontierFailed Op = 41
	OpGetAcceptedStateSummaryFailed Op = 42
)

const firstInternalOp = OpGetAcceptedFrontierFailed

// ErrUnknownOp is returned when a name or code is not in the registry.
var ErrUnknownOp = errors.New("message: unknown op")

// registry is indexed by op value; empty names are unassigned codes.
var registry = [...]string{
	OpPong:                          "pong",
	OpPing:                          "ping",
	OpGetAcceptedFrontier:           "get_accepted_frontier",
	OpAcceptedFrontier:              "accepted_frontier",
	OpGetAccepted:                   "get_accepted",
	OpAccepted:                      "accepted",
	OpGetAncestors:                  "get_ancestors",
	OpAncestors:                     "ancestors",
	OpGet:                           "get",
	OpPut:                           "put",
	OpPushQuery:                     "push_query",
	OpPullQuery:                     "pull_query",
	OpChits:                         "chits",
	OpPeerList:                      "peerlist",
	OpVersion:                       "version",
	OpAppRequest:                    "app_request",
	OpAppResponse:                   "app_response",
	OpAppGossip:                     "app_gossip",
	OpGetStateSummaryFrontier:       "get_state_summary_frontier",
	OpStateSummaryFrontier:          "state_summary_frontier",
	OpGetAcceptedStateSummary:       "get_accepted_state_summary",
	OpAcceptedStateSummary:          "accepted_state_summary",
	OpChitsV2:                       "chits_v2",
	OpGetAcceptedFrontierFailed:     "get_accepted_frontier_failed",
	OpGetAcceptedFailed:             "get_accepted_failed",
	OpGetFailed:                     "get_failed",
	OpQueryFailed:                   "query_failed",
	OpGetAncestorsFailed:            "get_ancestors_failed",
	OpAppRequestFailed:              "app_request_failed",
	OpTimeout:                       "timeout",
	OpConnected:                     "connected",
	OpDisconnected:                  "disconnected",
	OpNotify:                        "notify",
	OpGossipRequest:                 "gossip_request",
	OpGetStateSummaryFrontierFailed: "get_state_summary_frontier_failed",
	OpGetAcceptedStateSummaryFailed: "get_accepted_state_summary_failed",
}

// Lookup returns the op registered under name.
func Lookup(name string) (Op, error) {
	for code, n := range registry {
		if n != "" && n == name {
			return Op(code), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, name)
}

// Ops returns every registered op in ascending order.
func Ops() []Op {
	ops := make([]Op, 0, len(registry))
	for code, n := range registry {
		if n != "" {
			ops = append(ops, Op(code))
		}
	}
	return ops
}

// Valid reports whether the op is registered.
func (o Op) Valid() bool {
	return int(o) < len(registry) && registry[o] != ""
}

// String returns the registered name of the op.
func (o Op) String() string {
	if !o.Valid() {
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
	return registry[o]
}

// IsInternal reports whether the op is an engine-internal event that has
// no wire encoding.
func (o Op) IsInternal() bool {
	return o.Valid() && o >= firstInternalOp
}

// Compressible reports whether frames of this op carry the compressible
// flag byte and may be sent gzip-compressed.
func (o Op) Compressible() bool {
	switch o {
	case OpAncestors,
		OpPut,
		OpPushQuery,
		OpPeerList,
		OpAppRequest,
		OpAppResponse,
		OpAppGossip,
		OpStateSummaryFrontier,
		OpGetAcceptedStateSummary,
		OpAcceptedStateSummary:
		return true
	default:
		return false
	}
}
