// Package experiment drives reliability-mode measurement campaigns: for
// each trustworthiness setting it runs a batch of decision rounds on the
// fixed leader and records how often the weighted vote reaches consensus.
package experiment

import (
	"encoding/json"
	"math"
	"os"
)

// Result is the aggregate of one sweep point: all rounds run at a single
// pNode setting under a nominal channel SNR.
type Result struct {
	SNR                float64 `json:"snr"`
	PNode              float64 `json:"pNode"`
	N                  int     `json:"n"`
	PSys               float64 `json:"pSys"`
	AvgEffectiveScale  float64 `json:"avgEffectiveScale"`
	StdEffectiveScale  float64 `json:"stdEffectiveScale"`
	SuccessCount       int     `json:"successCount"`
	TotalRounds        int     `json:"totalRounds"`
	PacketLossRate     float64 `json:"packetLossRate"`
	RawEffectiveScales []int   `json:"rawEffectiveScales"`
	PSysTheory         float64 `json:"pSysTheory"`
}

// aggregate folds per-round observations into a Result.
func aggregate(snr, pNode float64, n int, successes int, scales []int) *Result {
	res := &Result{
		SNR:                snr,
		PNode:              pNode,
		N:                  n,
		SuccessCount:       successes,
		TotalRounds:        len(scales),
		RawEffectiveScales: scales,
		PSysTheory:         MajorityProbability(n, pNode),
	}
	if res.TotalRounds == 0 {
		return res
	}
	res.PSys = float64(successes) / float64(res.TotalRounds)

	var sum float64
	for _, s := range scales {
		sum += float64(s)
	}
	res.AvgEffectiveScale = sum / float64(res.TotalRounds)

	var sq float64
	for _, s := range scales {
		d := float64(s) - res.AvgEffectiveScale
		sq += d * d
	}
	res.StdEffectiveScale = math.Sqrt(sq / float64(res.TotalRounds))

	// Followers that never answered a round count as lost datagrams.
	followers := n - 1
	if followers > 0 {
		res.PacketLossRate = 1.0 - res.AvgEffectiveScale/float64(followers)
		if res.PacketLossRate < 0 {
			res.PacketLossRate = 0
		}
	}
	return res
}

// MajorityProbability returns the closed-form probability that a strict
// majority of n independent Bernoulli(p) voters says yes. It is the
// lossless-channel reference curve the measured pSys is compared against.
func MajorityProbability(n int, p float64) float64 {
	if n <= 0 {
		return 0
	}
	need := n/2 + 1
	var total float64
	for k := need; k <= n; k++ {
		total += binomial(n, k) * math.Pow(p, float64(k)) * math.Pow(1-p, float64(n-k))
	}
	return total
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result = result * float64(n-i) / float64(i+1)
	}
	return result
}

// WriteResults writes the sweep results as a JSON array to path.
func WriteResults(path string, results []*Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
