package workflow

import "github.com/groblegark/dockhand/internal/model"

// keysFor lists the function keys active for a state. Exit is available
// everywhere; the descriptive fields add skip, copy-previous, and label.
func (d *Dispatcher) keysFor(op model.Op) []model.FunctionKey {
	keys := []model.FunctionKey{{Key: "F3", Label: "Exit"}}

	if op.IsOptionalField() {
		keys = append(keys,
			model.FunctionKey{Key: "F6", Label: "Copy Prev"},
			model.FunctionKey{Key: "F8", Label: "Skip"},
			model.FunctionKey{Key: "F9", Label: "Label"},
		)
	}

	switch op {
	case model.OpLot:
		keys = append(keys, model.FunctionKey{Key: "F5", Label: "Lot On/Off"})
	case model.OpSendPallet:
		keys = append(keys, model.FunctionKey{Key: "F9", Label: "Label"})
	}
	return keys
}
