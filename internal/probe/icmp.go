package probe

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/hamed0406/cxn/internal/domain"
)

const (
	protocolICMP     = 1
	protocolIPv6ICMP = 58

	defaultPayloadSize = 56
)

// ICMPPinger sends echo requests over unprivileged datagram ICMP sockets, or
// raw sockets when Privileged is set. Every Ping call opens its own socket, so
// one pinger can serve many hosts concurrently.
type ICMPPinger struct {
	Privileged  bool
	PayloadSize int
	Logger      *zap.Logger
}

// NewICMPPinger verifies that an ICMP socket can be opened in the requested
// mode before any host is attempted.
func NewICMPPinger(privileged bool, logger *zap.Logger) (*ICMPPinger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ICMPPinger{Privileged: privileged, PayloadSize: defaultPayloadSize, Logger: logger}
	conn, err := p.listen(false)
	if err != nil {
		return nil, fmt.Errorf("open icmp socket: %s: %w", describePingError(err, 0), err)
	}
	_ = conn.Close()
	return p, nil
}

// Probe implements Pinger.
func (p *ICMPPinger) Probe(ctx context.Context, ip netip.Addr, timeout time.Duration, count int) domain.ProbeOutcome {
	return p.Ping(ctx, ip, timeout, count).Outcome()
}

// Ping sends count sequential echoes and records every reply or error.
func (p *ICMPPinger) Ping(ctx context.Context, ip netip.Addr, timeout time.Duration, count int) PingReport {
	if count < 1 {
		count = 1
	}
	ip = ip.Unmap()
	rep := PingReport{Address: ip, Timeout: timeout, Replies: make([]EchoReply, 0, count)}

	conn, err := p.listen(ip.Is6())
	if err != nil {
		for seq := 0; seq < count; seq++ {
			rep.Replies = append(rep.Replies, EchoReply{Seq: seq, Err: err})
		}
		return rep
	}
	defer conn.Close()

	id := rand.IntN(1 << 16)
	payload := make([]byte, p.PayloadSize)
	for seq := 0; seq < count; seq++ {
		if ctx.Err() != nil {
			// stopped: report only what was sent
			break
		}
		rtt, err := p.echo(conn, ip, id, seq, payload, timeout)
		rep.Replies = append(rep.Replies, EchoReply{Seq: seq, RTT: rtt, Err: err})
	}

	p.Logger.Debug("ping_done",
		zap.String("ip", ip.String()),
		zap.Int("sent", rep.Sent()),
		zap.Int("received", rep.Received()),
	)
	return rep
}

func (p *ICMPPinger) listen(v6 bool) (*icmp.PacketConn, error) {
	network, addr := "udp4", "0.0.0.0"
	switch {
	case v6 && p.Privileged:
		network, addr = "ip6:ipv6-icmp", "::"
	case v6:
		network, addr = "udp6", "::"
	case p.Privileged:
		network = "ip4:icmp"
	}
	return icmp.ListenPacket(network, addr)
}

func (p *ICMPPinger) echo(conn *icmp.PacketConn, ip netip.Addr, id, seq int, payload []byte, timeout time.Duration) (time.Duration, error) {
	var (
		reqType   icmp.Type = ipv4.ICMPTypeEcho
		replyType icmp.Type = ipv4.ICMPTypeEchoReply
		proto               = protocolICMP
	)
	if ip.Is6() {
		reqType, replyType, proto = ipv6.ICMPTypeEchoRequest, ipv6.ICMPTypeEchoReply, protocolIPv6ICMP
	}

	msg := icmp.Message{
		Type: reqType,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: payload},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return 0, err
	}

	var dst net.Addr = &net.UDPAddr{IP: ip.AsSlice(), Zone: ip.Zone()}
	if p.Privileged {
		dst = &net.IPAddr{IP: ip.AsSlice(), Zone: ip.Zone()}
	}

	start := time.Now()
	if err := conn.SetReadDeadline(start.Add(timeout)); err != nil {
		return 0, err
	}
	if _, err := conn.WriteTo(wire, dst); err != nil {
		return 0, err
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return 0, err
		}
		reply, err := icmp.ParseMessage(proto, buf[:n])
		if err != nil || reply.Type != replyType {
			continue
		}
		body, ok := reply.Body.(*icmp.Echo)
		if !ok || body.Seq != seq {
			continue
		}
		// datagram sockets get their identifier rewritten by the kernel
		if p.Privileged && (body.ID != id || !fromAddr(peer, ip)) {
			continue
		}
		return time.Since(start), nil
	}
}

func fromAddr(peer net.Addr, ip netip.Addr) bool {
	var raw net.IP
	switch a := peer.(type) {
	case *net.IPAddr:
		raw = a.IP
	case *net.UDPAddr:
		raw = a.IP
	default:
		return false
	}
	got, ok := netip.AddrFromSlice(raw)
	return ok && got.Unmap() == ip
}

func describePingError(err error, timeout time.Duration) string {
	switch {
	case isTimeout(err):
		return fmt.Sprintf("timeout after %dms", timeout.Milliseconds())
	case errors.Is(err, os.ErrPermission):
		return "permission denied (need cap_net_raw)"
	case errors.Is(err, syscall.ENETUNREACH):
		return "network unreachable"
	case errors.Is(err, syscall.EHOSTUNREACH):
		return "no route to host"
	}
	return err.Error()
}

func classifyPingError(err error) domain.FailureKind {
	if isTimeout(err) {
		return domain.FailureProbeTimeout
	}
	return domain.FailureProbeTransport
}
