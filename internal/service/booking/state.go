package booking

import (
	"errors"
	"fmt"
)

// Step is where a customer stands in the booking wizard.
type Step int

const (
	StepSelection Step = iota + 1
	StepPayment
	StepConfirmation
	StepTokenValidation
)

var stepNames = map[Step]string{
	StepSelection:       "selection",
	StepPayment:         "payment",
	StepConfirmation:    "confirmation",
	StepTokenValidation: "token_validation",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func (s Step) MarshalText() ([]byte, error) {
	if _, ok := stepNames[s]; !ok {
		return nil, fmt.Errorf("unknown step %d", int(s))
	}
	return []byte(s.String()), nil
}

type Action int

const (
	ActionContinue Action = iota + 1
	ActionBack
	ActionOrderCreated
	ActionOpenTokenValidation
	ActionRedeemed
	ActionReset
)

var actionNames = map[Action]string{
	ActionContinue:            "continue",
	ActionBack:                "back",
	ActionOrderCreated:        "order_created",
	ActionOpenTokenValidation: "open_token_validation",
	ActionRedeemed:            "redeemed",
	ActionReset:               "reset",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

var ErrIllegalTransition = errors.New("illegal transition")

// Transition is the whole wizard graph. Guards that depend on flow data (ticket count,
// customer fields) are checked by the Flow before it asks for the next step.
// Confirmation has no way out: the customer leaves and comes back through a new session.
func Transition(from Step, action Action) (Step, error) {
	switch from {
	case StepSelection:
		switch action {
		case ActionContinue:
			return StepPayment, nil
		case ActionOpenTokenValidation:
			return StepTokenValidation, nil
		}
	case StepPayment:
		switch action {
		case ActionBack:
			return StepSelection, nil
		case ActionOrderCreated:
			return StepConfirmation, nil
		case ActionOpenTokenValidation:
			return StepTokenValidation, nil
		}
	case StepTokenValidation:
		switch action {
		case ActionRedeemed, ActionReset:
			return StepSelection, nil
		}
	}
	return from, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, from)
}
