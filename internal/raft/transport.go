package raft

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net"
	"os"
	"sync"
	"time"
)

// Packet is one inbound datagram together with the receiver-side channel
// sample supplied by the physical layer.
type Packet struct {
	Data []byte
	SNR  float64
}

// Transport is the datagram boundary toward the physical layer. Delivery is
// unordered, lossy and at-most-once; Send has broadcast semantics (the PHY
// radiates one frame that every neighbor may receive).
type Transport interface {
	// Send hands a datagram to the PHY for broadcast. Fire-and-forget.
	Send(data []byte) error

	// Receive waits up to timeout for one datagram. It returns
	// ErrReceiveTimeout when nothing arrived and ErrTransportClosed after
	// Close.
	Receive(timeout time.Duration) (*Packet, error)

	// Close shuts the transport down.
	Close() error

	// LocalAddr returns the local receive address.
	LocalAddr() string
}

// snrProbe mirrors the envelope field the flowgraph's SNR injector rewrites
// on every received frame.
type snrProbe struct {
	Phy ChannelSample `json:"phy_state"`
}

// UDPTransport exchanges datagrams with the SDR flowgraph: everything sent
// goes to the flowgraph's TX port, everything received arrives on our RX
// port with the SNR injected into the payload by the flowgraph.
type UDPTransport struct {
	conn   *net.UDPConn
	txAddr *net.UDPAddr
	buf    []byte
	closed bool
	mu     sync.Mutex
}

// NewUDPTransport binds rxAddr for receiving and targets txAddr for sends.
func NewUDPTransport(rxAddr, txAddr string) (*UDPTransport, error) {
	rx, err := net.ResolveUDPAddr("udp", rxAddr)
	if err != nil {
		return nil, err
	}
	tx, err := net.ResolveUDPAddr("udp", txAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", rx)
	if err != nil {
		return nil, err
	}
	return &UDPTransport{
		conn:   conn,
		txAddr: tx,
		buf:    make([]byte, 4096),
	}, nil
}

// Send broadcasts one datagram through the PHY.
func (t *UDPTransport) Send(data []byte) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrTransportClosed
	}
	_, err := t.conn.WriteToUDP(data, t.txAddr)
	return err
}

// Receive reads one datagram with a bounded wait and extracts the channel
// sample the flowgraph injected into the payload.
func (t *UDPTransport) Receive(timeout time.Duration) (*Packet, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, ErrTransportClosed
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	n, _, err := t.conn.ReadFromUDP(t.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrReceiveTimeout
		}
		t.mu.Lock()
		closed = t.closed
		t.mu.Unlock()
		if closed {
			return nil, ErrTransportClosed
		}
		return nil, err
	}

	data := make([]byte, n)
	copy(data, t.buf[:n])

	var probe snrProbe
	// Non-JSON payloads still get delivered; the codec rejects them later.
	_ = json.Unmarshal(data, &probe)

	return &Packet{Data: data, SNR: probe.Phy.SNR}, nil
}

// Close shuts down the socket; a blocked Receive returns promptly.
func (t *UDPTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()
	return t.conn.Close()
}

// LocalAddr returns the bound receive address.
func (t *UDPTransport) LocalAddr() string {
	return t.conn.LocalAddr().String()
}

// SimNetwork is an in-process channel simulator for tests: broadcast
// delivery with per-link SNR and loss probability, standing in for the
// radio link.
type SimNetwork struct {
	transports map[int]*SimTransport
	links      map[[2]int]simLink
	defaultSNR float64
	rng        *rand.Rand
	mu         sync.Mutex
}

type simLink struct {
	snr  float64
	loss float64
}

// NewSimNetwork creates a simulated network. defaultSNR is the channel
// sample attached to deliveries without an explicit link setting. rng may
// be nil for a time-seeded source.
func NewSimNetwork(defaultSNR float64, rng *rand.Rand) *SimNetwork {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SimNetwork{
		transports: make(map[int]*SimTransport),
		links:      make(map[[2]int]simLink),
		defaultSNR: defaultSNR,
		rng:        rng,
	}
}

// SetLink configures the directed link from -> to with a fixed SNR and a
// loss probability in [0,1].
func (n *SimNetwork) SetLink(from, to int, snr, loss float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links[[2]int{from, to}] = simLink{snr: snr, loss: loss}
}

// NewTransport registers a node on the network.
func (n *SimNetwork) NewTransport(nodeID int) *SimTransport {
	t := &SimTransport{
		network: n,
		nodeID:  nodeID,
		inbox:   make(chan *Packet, 256),
		done:    make(chan struct{}),
	}
	n.mu.Lock()
	n.transports[nodeID] = t
	n.mu.Unlock()
	return t
}

// deliver fans a datagram out to every other registered transport,
// applying per-link loss and attaching the per-link SNR.
func (n *SimNetwork) deliver(from int, data []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, t := range n.transports {
		if id == from {
			continue
		}
		link, ok := n.links[[2]int{from, id}]
		if !ok {
			link = simLink{snr: n.defaultSNR}
		}
		if link.loss > 0 && n.rng.Float64() < link.loss {
			continue
		}
		pkt := &Packet{Data: data, SNR: link.snr}
		select {
		case t.inbox <- pkt:
		default:
			// Receiver backlogged; the radio would have dropped it too.
		}
	}
}

// SimTransport is one node's endpoint on a SimNetwork.
type SimTransport struct {
	network *SimNetwork
	nodeID  int
	inbox   chan *Packet
	done    chan struct{}
	closed  bool
	mu      sync.Mutex
}

// Send broadcasts to every other node on the network.
func (t *SimTransport) Send(data []byte) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrTransportClosed
	}
	// Copy so later sender mutations cannot race receivers.
	buf := make([]byte, len(data))
	copy(buf, data)
	t.network.deliver(t.nodeID, buf)
	return nil
}

// Receive waits up to timeout for one delivery.
func (t *SimTransport) Receive(timeout time.Duration) (*Packet, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case pkt := <-t.inbox:
		return pkt, nil
	case <-t.done:
		return nil, ErrTransportClosed
	case <-timer.C:
		return nil, ErrReceiveTimeout
	}
}

// Close shuts the endpoint down.
func (t *SimTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	return nil
}

// LocalAddr returns a synthetic address for logging.
func (t *SimTransport) LocalAddr() string {
	return "sim"
}
