package handodds

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// MaxRedrawsPerTrial caps a single simulated mulligan sequence
const MaxRedrawsPerTrial = 100_000

type card uint8

const (
	cardFiller card = iota
	cardGood
	cardBad
)

// SimulationResult is an empirical estimate of one of the calculator values
type SimulationResult struct {
	Trials   int     `json:"trials"`
	Samples  int     `json:"samples"` // trials that contributed to the estimate
	Estimate float64 `json:"estimate"`
	StdDev   float64 `json:"std_dev"`

	// Truncated counts mulligan trials stopped at the redraw cap. Their
	// redraw count is a lower bound, so a non-zero value biases Estimate low.
	Truncated int `json:"truncated,omitempty"`
}

// Simulator estimates the bad-hand rate and the expected mulligan count by
// shuffling decks, as a cross-check for the closed-form calculators.
type Simulator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	maxRedraws int
}

// NewSimulator creates a reproducible simulator
func NewSimulator(seed uint64) *Simulator {
	return &Simulator{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxRedraws: MaxRedrawsPerTrial,
	}
}

// NewRandomSimulator creates a simulator seeded from crypto/rand
func NewRandomSimulator() *Simulator {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// Fallback to timestamp-based seed if crypto/rand fails
		return NewSimulator(uint64(time.Now().UnixNano()))
	}
	return NewSimulator(binary.LittleEndian.Uint64(buf[:]))
}

// drawHand moves a uniformly random hand-sized sample to the front of deck
func (s *Simulator) drawHand(deck []card, hand int) []card {
	for i := range hand {
		j := i + s.rng.IntN(len(deck)-i)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck[:hand]
}

func buildDeck(size int, counts map[card]int) []card {
	deck := make([]card, size)
	pos := 0
	for _, c := range []card{cardGood, cardBad} {
		for range counts[c] {
			deck[pos] = c
			pos++
		}
	}
	return deck
}

// SimulateBadHand estimates, as a percentage, how often a hand holding a
// marked card holds no good card. Estimate is 0 when no sampled hand held a
// marked card.
func (s *Simulator) SimulateBadHand(p BadHandParams, trials int) (*SimulationResult, error) {
	if _, err := ValidateBadHandParams(p); err != nil {
		return nil, err
	}
	if trials <= 0 {
		return nil, ErrInvalidTrials
	}

	deck := buildDeck(p.Deck, map[card]int{cardGood: p.GoodCount, cardBad: p.BadCount})
	var outcomes []float64

	s.mu.Lock()
	for range trials {
		var good, bad bool
		for _, c := range s.drawHand(deck, p.Hand) {
			good = good || c == cardGood
			bad = bad || c == cardBad
		}
		if !good && !bad {
			continue
		}
		if good {
			outcomes = append(outcomes, 0)
		} else {
			outcomes = append(outcomes, 100)
		}
	}
	s.mu.Unlock()

	return summarize(trials, outcomes)
}

// SimulateMulligans estimates the expected number of redraws before a hand
// holds a marked card. Estimate is 0 when such a hand is impossible.
func (s *Simulator) SimulateMulligans(p MulliganParams, trials int) (*SimulationResult, error) {
	if _, err := ValidateMulliganParams(p); err != nil {
		return nil, err
	}
	if trials <= 0 {
		return nil, ErrInvalidTrials
	}
	if p.MarkedCount == 0 || p.Hand == 0 {
		return &SimulationResult{Trials: trials}, nil
	}

	deck := buildDeck(p.Deck, map[card]int{cardGood: p.MarkedCount})
	outcomes := make([]float64, 0, trials)
	truncated := 0

	s.mu.Lock()
	for range trials {
		redraws := 0
		for !containsCard(s.drawHand(deck, p.Hand), cardGood) {
			if redraws == s.maxRedraws {
				truncated++
				break
			}
			redraws++
		}
		outcomes = append(outcomes, float64(redraws))
	}
	s.mu.Unlock()

	result, err := summarize(trials, outcomes)
	if err != nil {
		return nil, err
	}
	result.Truncated = truncated
	return result, nil
}

func containsCard(hand []card, want card) bool {
	for _, c := range hand {
		if c == want {
			return true
		}
	}
	return false
}

func summarize(trials int, outcomes []float64) (*SimulationResult, error) {
	result := &SimulationResult{Trials: trials, Samples: len(outcomes)}
	if len(outcomes) == 0 {
		return result, nil
	}

	mean, err := stats.Mean(outcomes)
	if err != nil {
		return nil, err
	}
	stdDev, err := stats.StandardDeviation(outcomes)
	if err != nil {
		return nil, err
	}

	result.Estimate = mean
	result.StdDev = stdDev
	return result, nil
}
