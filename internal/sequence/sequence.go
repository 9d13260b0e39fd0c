// Package sequence computes the next required scan step from the session's
// gate flags and accumulated values. Different customers and products
// require different subsets of descriptive data; instead of a rigid linear
// flow, the sequencer walks a fixed-precedence table and returns the first
// step whose gate is enabled, whose value is still empty, and which is
// reachable from the step just completed. The result is a deterministic
// function of its inputs.
package sequence

import "github.com/groblegark/dockhand/internal/model"

// step is one entry of the precedence table.
type step struct {
	op      model.Op
	enabled func(model.Gates) bool
	filled  func(model.Scans) bool
}

// table is the fixed precedence order of the optional scan steps.
// Slaughter-date shares the establishment gate.
var table = []step{
	{model.OpLot,
		func(g model.Gates) bool { return g.Lot },
		func(s model.Scans) bool { return s.Lot != "" }},
	{model.OpCustomerLot,
		func(g model.Gates) bool { return g.CustomerLot },
		func(s model.Scans) bool { return s.CustomerLot != "" }},
	{model.OpEstablishment,
		func(g model.Gates) bool { return g.Establishment },
		func(s model.Scans) bool { return s.Establishment != "" }},
	{model.OpSlaughterDate,
		func(g model.Gates) bool { return g.Establishment },
		func(s model.Scans) bool { return s.SlaughterDate != "" }},
	{model.OpReference,
		func(g model.Gates) bool { return g.Reference },
		func(s model.Scans) bool { return s.Reference != "" }},
	{model.OpTemperature,
		func(g model.Gates) bool { return g.Temperature },
		func(s model.Scans) bool { return s.Temperature != "" }},
	{model.OpBestBefore,
		func(g model.Gates) bool { return g.BestBefore },
		func(s model.Scans) bool { return s.BestBefore != "" }},
	{model.OpConsignee,
		func(g model.Gates) bool { return g.Consignee },
		func(s model.Scans) bool { return s.Consignee != "" }},
}

// Next returns the next required scan step after the given op. Only steps
// strictly after the completed one in precedence order are reachable when
// the completed op is itself an optional field; any other op enters the
// table from the top. Skipped fields are not re-asked. When no step
// applies, the pallet is ready to finalize.
func Next(after model.Op, g model.Gates, sc model.Scans, fl model.Flags) model.Op {
	start := 0
	if after.IsOptionalField() {
		for i, st := range table {
			if st.op == after {
				start = i + 1
				break
			}
		}
	}
	for _, st := range table[start:] {
		if !st.enabled(g) {
			continue
		}
		if st.filled(sc) {
			continue
		}
		if fl.WasSkipped(st.op) {
			continue
		}
		return st.op
	}
	return model.OpSendPallet
}

// Missing returns the enabled steps that have no value and were neither
// skipped nor satisfied by the copy-previous shortcut. A pallet may only
// finalize when this list is empty.
func Missing(g model.Gates, sc model.Scans, fl model.Flags) []model.Op {
	if fl.CopyUsed {
		return nil
	}
	var out []model.Op
	for _, st := range table {
		if st.enabled(g) && !st.filled(sc) && !fl.WasSkipped(st.op) {
			out = append(out, st.op)
		}
	}
	return out
}
