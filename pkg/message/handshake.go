package message

import (
	"fmt"
	"net/netip"

	"github.com/vango-dev/peerwire/pkg/ids"
	"github.com/vango-dev/peerwire/pkg/packer"
)

// Ping is sent periodically to a peer to check its uptime. The peer answers
// with the uptime it observed for us in a Pong.
type Ping struct{}

func (Ping) Op() Op                      { return OpPing }
func (Ping) String() string              { return "msg ping" }
func (Ping) packFields(p *packer.Packer) {}

// Pong carries the uptime of the receiver as observed by the sender.
type Pong struct {
	UptimePct uint8
}

func (Pong) Op() Op         { return OpPong }
func (Pong) String() string { return "msg pong" }

func (m Pong) packFields(p *packer.Packer) {
	p.PackByte(m.UptimePct)
}

// Version is the first message sent on a new connection. The remote peer
// closes the connection unless the network ID matches and the clocks are in
// sync.
type Version struct {
	NetworkID uint32

	// MyTime is the local time in unix seconds.
	MyTime uint64

	// IP is the address the sender claims to be reachable at.
	IP netip.AddrPort

	MyVersion      string
	MyVersionTime  uint64
	Sig            []byte
	TrackedSubnets []ids.ID
}

func (Version) Op() Op { return OpVersion }

func (m Version) String() string {
	return fmt.Sprintf("msg version (network ID %d)", m.NetworkID)
}

func (m Version) packFields(p *packer.Packer) {
	p.PackU32(m.NetworkID)
	p.PackU32(0) // node ID, deprecated
	p.PackU64(m.MyTime)
	p.PackIP(m.IP.Addr(), m.IP.Port())
	p.PackStr(m.MyVersion)
	p.PackU64(m.MyVersionTime)
	p.PackBytesWithHeader(m.Sig)
	packIDs(p, m.TrackedSubnets)
}

// ClaimedIPPort is one entry of a PeerList: the peer's certificate and a
// signed claim that it is reachable at IP as of Timestamp.
type ClaimedIPPort struct {
	Certificate []byte
	IP          netip.AddrPort
	Timestamp   uint64
	Signature   []byte
}

// PeerList is sent in response to Version and periodically to a sample of
// validators.
type PeerList struct {
	Peers []ClaimedIPPort

	// BypassThrottling is a local send hint. It is not part of the frame.
	BypassThrottling bool
}

func (PeerList) Op() Op         { return OpPeerList }
func (PeerList) String() string { return "msg peerlist" }

func (m PeerList) packFields(p *packer.Packer) {
	p.PackU32(uint32(len(m.Peers)))
	for i := range m.Peers {
		peer := &m.Peers[i]
		p.PackBytesWithHeader(peer.Certificate)
		p.PackIP(peer.IP.Addr(), peer.IP.Port())
		p.PackU64(peer.Timestamp)
		p.PackBytesWithHeader(peer.Signature)
	}
}
