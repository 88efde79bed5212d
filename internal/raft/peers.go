package raft

import "time"

// PeerInfo is the tracked state for one neighbor: an exponentially smoothed
// SNR and the time of the last received datagram. Entries are created on
// first contact and never deleted; peers outside the liveness window are
// simply excluded from aggregates.
type PeerInfo struct {
	ID          int
	SmoothedSNR float64
	LastSeen    time.Time
	Received    uint64
}

// PeerTracker maintains per-neighbor link quality. The node mutates it
// under its state lock; the tracker itself carries no lock.
type PeerTracker struct {
	peers     map[int]*PeerInfo
	smoothing float64       // EWMA coefficient for new samples
	window    time.Duration // liveness window for aggregates
}

// NewPeerTracker creates a tracker. smoothing is the EWMA weight given to a
// new sample (0 < smoothing <= 1); window is the soft-expiry horizon.
func NewPeerTracker(smoothing float64, window time.Duration) *PeerTracker {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = 0.3
	}
	if window <= 0 {
		window = 10 * time.Second
	}
	return &PeerTracker{
		peers:     make(map[int]*PeerInfo),
		smoothing: smoothing,
		window:    window,
	}
}

// Observe records one received datagram from a peer with its channel
// sample. A zero SNR still refreshes liveness but does not disturb the
// smoothed value (the injector reports 0 when no measurement was taken).
func (t *PeerTracker) Observe(id int, snr float64, now time.Time) {
	p, ok := t.peers[id]
	if !ok {
		p = &PeerInfo{ID: id}
		t.peers[id] = p
	}
	if snr != 0 {
		if p.SmoothedSNR == 0 {
			p.SmoothedSNR = snr
		} else {
			p.SmoothedSNR = t.smoothing*snr + (1-t.smoothing)*p.SmoothedSNR
		}
	}
	p.LastSeen = now
	p.Received++
}

// SNR returns the smoothed SNR for a peer (0 if unknown).
func (t *PeerTracker) SNR(id int) float64 {
	if p, ok := t.peers[id]; ok {
		return p.SmoothedSNR
	}
	return 0
}

// Live returns the peers seen within the liveness window.
func (t *PeerTracker) Live(now time.Time) []*PeerInfo {
	live := make([]*PeerInfo, 0, len(t.peers))
	for _, p := range t.peers {
		if now.Sub(p.LastSeen) <= t.window {
			live = append(live, p)
		}
	}
	return live
}

// LiveCount returns the number of peers inside the liveness window.
func (t *PeerTracker) LiveCount(now time.Time) int {
	return len(t.Live(now))
}

// Gamma returns the aggregate link quality: the sum of smoothed SNR over
// peers inside the liveness window. Peers without a measurement yet
// contribute nothing.
func (t *PeerTracker) Gamma(now time.Time) float64 {
	var gamma float64
	for _, p := range t.Live(now) {
		gamma += p.SmoothedSNR
	}
	return gamma
}

// Snapshot returns a copy of the current smoothed SNR table for the peers
// inside the liveness window, keyed by peer ID. Used to build SNR reports.
func (t *PeerTracker) Snapshot(now time.Time) map[int]float64 {
	out := make(map[int]float64)
	for _, p := range t.Live(now) {
		out[p.ID] = p.SmoothedSNR
	}
	return out
}
