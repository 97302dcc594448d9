package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/tablesideapp/tableside/internal/ordering"
	"github.com/tablesideapp/tableside/ui/components/picker"
)

// PickerPanel renders the picker for basePath ("/menu/picker" or "/pos/picker").
func PickerPanel(basePath string, view ordering.View) templ.Component {
	return component(func(f *fragment) {
		f.raw(`<section id="picker"` + attr("data-state", view.State) + ` class="space-y-4">`)
		if view.Product == nil {
			f.raw(`</section>`)
			return
		}

		f.raw(`<header class="flex items-center justify-between"><h2 class="text-lg font-semibold">`)
		f.text(view.Product.Name)
		f.raw(`</h2><button type="button"` + attr("hx-post", basePath+"/close") + ` hx-target="#picker" hx-swap="outerHTML" class="text-stone-500">&times;</button></header>`)

		for _, axis := range view.Axes {
			f.raw(`<fieldset class="space-y-2"><legend class="text-sm font-medium">`)
			f.text(axis.Name)
			f.raw(`</legend><div class="flex flex-wrap gap-2">`)
			for _, option := range axis.Options {
				f.raw(`<button type="button"` +
					attr("hx-post", basePath+"/toggle") +
					attr("hx-vals", hxVals("axis", axis.Name, "option", option.Label)) +
					` hx-target="#picker" hx-swap="outerHTML"` +
					attr("aria-pressed", strconv.FormatBool(option.Selected)) +
					attr("class", picker.OptionClass(option.Selected, option.Available)) + `>`)
				f.text(option.Label)
				f.raw(`</button>`)
			}
			f.raw(`</div></fieldset>`)
		}

		f.raw(`<p` + attr("class", picker.StatusTone(view.Label)) + `>`)
		switch {
		case view.Label != "":
			f.text(view.Label)
		case view.Variant != nil:
			f.text(picker.FormatPrice(view.Variant.Price))
		}
		f.raw(`</p>`)

		quantityControls(f, basePath, view)

		f.raw(`<button type="button"` + attr("hx-post", basePath+"/commit") + ` hx-target="#picker" hx-swap="outerHTML"` +
			attr("class", picker.ButtonClass(view.CanCommit, "w-full")))
		if !view.CanCommit {
			f.raw(` disabled`)
		}
		f.raw(`>Add</button></section>`)
	})
}

func quantityControls(f *fragment, basePath string, view ordering.View) {
	f.raw(`<div class="flex items-center gap-3">`)
	step := func(label, delta string, enabled bool) {
		f.raw(`<button type="button"` + attr("hx-post", basePath+"/quantity") +
			attr("hx-vals", hxVals("delta", delta)) + ` hx-target="#picker" hx-swap="outerHTML"` +
			attr("class", picker.ButtonClass(enabled, "px-3 py-1")))
		if !enabled {
			f.raw(` disabled`)
		}
		f.raw(`>` + label + `</button>`)
	}
	step("-", "-1", view.Bounds.Enabled && view.Quantity > view.Bounds.Min)
	f.raw(`<span class="w-8 text-center" data-quantity>` + strconv.Itoa(view.Quantity) + `</span>`)
	step("+", "1", view.Bounds.Enabled && view.Quantity < view.Bounds.Max)
	f.raw(`</div>`)
}
