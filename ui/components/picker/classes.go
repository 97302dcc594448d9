// Package picker holds the presentation rules shared by the customer and POS
// picker fragments.
package picker

import (
	"fmt"

	twmerge "github.com/Oudwins/tailwind-merge-go"
)

const (
	optionBase     = "rounded-full border px-3 py-1 text-sm transition"
	optionSelected = "border-emerald-600 bg-emerald-600 text-white"
	optionIdle     = "border-stone-300 bg-white text-stone-800 hover:border-emerald-500"
	optionDimmed   = "border-dashed text-stone-400 hover:border-stone-300"

	buttonBase     = "rounded-md px-4 py-2 font-medium"
	buttonEnabled  = "bg-emerald-600 text-white hover:bg-emerald-700"
	buttonDisabled = "cursor-not-allowed bg-stone-200 text-stone-400"
)

// OptionClass styles an option chip. Unavailable options stay clickable so a
// user can switch away from a combination, but are dimmed.
func OptionClass(selected, available bool) string {
	switch {
	case selected:
		return twmerge.Merge(optionBase, optionSelected)
	case !available:
		return twmerge.Merge(optionBase, optionIdle, optionDimmed)
	default:
		return twmerge.Merge(optionBase, optionIdle)
	}
}

func ButtonClass(enabled bool, extra ...string) string {
	state := buttonDisabled
	if enabled {
		state = buttonEnabled
	}
	classes := append([]string{buttonBase, state}, extra...)
	return twmerge.Merge(classes...)
}

// FormatPrice renders minor units as a decimal amount.
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// StatusTone picks the label color for the picker status line.
func StatusTone(label string) string {
	if label == "" {
		return "text-stone-600"
	}
	return "text-rose-600"
}
