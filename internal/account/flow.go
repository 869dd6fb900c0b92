package account

import (
	"encoding/json"
	"fmt"
)

// Flow names one of the four OAuth grant types the orchestrator can drive.
type Flow string

const (
	FlowRefresh  Flow = "refresh"
	FlowPassword Flow = "password"
	FlowCode     Flow = "code"
	FlowDevice   Flow = "device"
)

func (f Flow) valid() bool {
	switch f {
	case FlowRefresh, FlowPassword, FlowCode, FlowDevice:
		return true
	default:
		return false
	}
}

// DefaultFlowOrder is the order the orchestrator uses when neither the
// caller nor the account configures one.
var DefaultFlowOrder = FlowOrder{FlowRefresh, FlowPassword, FlowCode, FlowDevice}

// FlowOrder is an ordered, duplicate-free sequence of flows.
type FlowOrder []Flow

// NewFlowOrder validates names and returns them as a FlowOrder, or an error
// naming the first unknown or duplicate entry.
func NewFlowOrder(names ...Flow) (FlowOrder, error) {
	seen := make(map[Flow]bool, len(names))
	for _, f := range names {
		if !f.valid() {
			return nil, fmt.Errorf("account: unknown flow %q", f)
		}
		if seen[f] {
			return nil, fmt.Errorf("account: duplicate flow %q in flow order", f)
		}
		seen[f] = true
	}
	out := make(FlowOrder, len(names))
	copy(out, names)
	return out, nil
}

// UnmarshalJSON accepts either a bracketed array of flow names or a single
// bare name, deduplicating as it parses, per the "list-shaped flow order"
// design note: a loader handed a one-flow config shouldn't need to wrap it
// in an array.
func (o *FlowOrder) UnmarshalJSON(data []byte) error {
	var multi []Flow
	if err := json.Unmarshal(data, &multi); err == nil {
		order, ferr := NewFlowOrder(multi...)
		if ferr != nil {
			return ferr
		}
		*o = order
		return nil
	}

	var single Flow
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("account: flow order must be a flow name or an array of flow names: %w", err)
	}
	order, err := NewFlowOrder(single)
	if err != nil {
		return err
	}
	*o = order
	return nil
}

// MarshalJSON always emits the array form.
func (o FlowOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal([]Flow(o))
}
