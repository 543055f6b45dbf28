package handodds

import "errors"

// CalculationStatus tags a CalculationState
type CalculationStatus string

const (
	StatusIdle        CalculationStatus = "idle"
	StatusCalculating CalculationStatus = "calculating"
	StatusSuccess     CalculationStatus = "success"
	StatusError       CalculationStatus = "error"
)

// Result units and descriptions
const (
	UnitPercent = "%"
	UnitTimes   = "times"

	DescriptionBadHand     = "bad-hand rate"
	DescriptionExpMulligan = "expected mulligans"
)

// CalculationResult is a successful calculator value ready for display
type CalculationResult struct {
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// CalculationFailure carries the user-facing message of a failed calculation
type CalculationFailure struct {
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Field   string    `json:"field,omitempty"`
}

// CalculationState is the lifecycle of the most recent calculation. Result is
// set only for StatusSuccess and Failure only for StatusError.
type CalculationState struct {
	Status  CalculationStatus   `json:"status"`
	Result  *CalculationResult  `json:"result,omitempty"`
	Failure *CalculationFailure `json:"failure,omitempty"`
}

// IdleState returns the initial state
func IdleState() CalculationState { return CalculationState{Status: StatusIdle} }

// outcomeState converts a calculator return pair into a final state
func outcomeState(value float64, err error, unit, description string) CalculationState {
	if err != nil {
		failure := &CalculationFailure{Message: err.Error()}
		var calcErr *CalcError
		if errors.As(err, &calcErr) {
			failure.Kind = calcErr.Kind
			failure.Field = calcErr.Field
		}
		return CalculationState{Status: StatusError, Failure: failure}
	}
	return CalculationState{
		Status: StatusSuccess,
		Result: &CalculationResult{Value: value, Unit: unit, Description: description},
	}
}

// IsCalculating reports whether a calculation is in flight
func (s CalculationState) IsCalculating() bool { return s.Status == StatusCalculating }

// HasResult reports whether the state holds a successful value
func (s CalculationState) HasResult() bool { return s.Status == StatusSuccess }

// HasError reports whether the state holds a failure
func (s CalculationState) HasError() bool { return s.Status == StatusError }
