package handodds

import "sync"

// Calculator evaluates the bad-hand and expected-mulligan formulas on top of
// an Engine. Calculators sharing an Engine share its coefficient cache.
type Calculator struct {
	engine *Engine
}

// NewCalculator creates a calculator over engine; a nil engine gets a fresh one
func NewCalculator(engine *Engine) *Calculator {
	if engine == nil {
		engine = NewEngine()
	}
	return &Calculator{engine: engine}
}

// Engine returns the underlying combinatorics engine
func (c *Calculator) Engine() *Engine { return c.engine }

// BadHand returns, as a percentage, the probability that a hand holding at
// least one marked card holds no good card. It is 0 when no marked card can
// be drawn at all.
func (c *Calculator) BadHand(p BadHandParams) (float64, error) {
	rate, err := c.badHand(p)
	c.engine.metrics.recordCalculation(&c.engine.metrics.BadHandCalculations, err)
	return rate, err
}

func (c *Calculator) badHand(p BadHandParams) (float64, error) {
	if _, err := ValidateBadHandParams(p); err != nil {
		return 0, err
	}

	allHand, err := c.engine.Combination(p.Deck, p.Hand)
	if err != nil {
		return 0, err
	}
	noMarked, err := c.engine.Combination(p.Deck-p.GoodCount-p.BadCount, p.Hand)
	if err != nil {
		return 0, err
	}

	existMarked := allHand - noMarked
	if existMarked == 0 {
		return 0, nil
	}

	noGood, err := c.engine.Combination(p.Deck-p.GoodCount, p.Hand)
	if err != nil {
		return 0, err
	}
	existGood := allHand - noGood

	return (existMarked - existGood) / existMarked * 100, nil
}

// CalcBadHand is BadHand with positional arguments
func (c *Calculator) CalcBadHand(deck, hand, goodCount, badCount int) (float64, error) {
	return c.BadHand(BadHandParams{Deck: deck, Hand: hand, GoodCount: goodCount, BadCount: badCount})
}

// ExpMulligan returns the expected number of mulligans before a hand with a
// marked card, as the odds ratio noMarked / (allHand - noMarked). It is 0
// when such a hand is impossible.
func (c *Calculator) ExpMulligan(p MulliganParams) (float64, error) {
	count, err := c.expMulligan(p)
	c.engine.metrics.recordCalculation(&c.engine.metrics.MulliganCalculations, err)
	return count, err
}

func (c *Calculator) expMulligan(p MulliganParams) (float64, error) {
	if _, err := ValidateMulliganParams(p); err != nil {
		return 0, err
	}

	allHand, err := c.engine.Combination(p.Deck, p.Hand)
	if err != nil {
		return 0, err
	}
	noMarked, err := c.engine.Combination(p.Deck-p.MarkedCount, p.Hand)
	if err != nil {
		return 0, err
	}

	denom := allHand - noMarked
	if denom == 0 {
		return 0, nil
	}
	return noMarked / denom, nil
}

// CalcExpMulligan is ExpMulligan with positional arguments
func (c *Calculator) CalcExpMulligan(deck, hand, markedCount int) (float64, error) {
	return c.ExpMulligan(MulliganParams{Deck: deck, Hand: hand, MarkedCount: markedCount})
}

var (
	defaultOnce       sync.Once
	defaultCalculator *Calculator
)

// Default returns the process-wide calculator, created on first use. Its
// cache lives for the lifetime of the process.
func Default() *Calculator {
	defaultOnce.Do(func() {
		defaultCalculator = NewCalculator(NewEngine(WithLogger(NewDefaultLogger(nil, false))))
	})
	return defaultCalculator
}

// Combination computes C(n, k) on the process-wide engine
func Combination(n, k int) (float64, error) {
	return Default().Engine().Combination(n, k)
}

// CalcBadHand computes the bad-hand percentage on the process-wide calculator
func CalcBadHand(deck, hand, goodCount, badCount int) (float64, error) {
	return Default().CalcBadHand(deck, hand, goodCount, badCount)
}

// CalcExpMulligan computes the expected mulligan count on the process-wide calculator
func CalcExpMulligan(deck, hand, markedCount int) (float64, error) {
	return Default().CalcExpMulligan(deck, hand, markedCount)
}
