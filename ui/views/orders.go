package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/tablesideapp/tableside/internal/models"
	"github.com/tablesideapp/tableside/ui/components/picker"
)

func CartPanel(cart *models.Cart) templ.Component {
	return component(func(f *fragment) {
		f.raw(`<section id="cart" class="space-y-2">`)
		if cart == nil || len(cart.Items) == 0 {
			f.raw(`<p class="text-stone-500">Your cart is empty</p></section>`)
			return
		}
		f.raw(`<ul class="divide-y">`)
		for _, item := range cart.Items {
			f.raw(`<li class="flex justify-between py-2"><span>`)
			f.text(item.ProductName)
			if item.VariantValue != "" && item.VariantValue != "default" {
				f.raw(` <small class="text-stone-500">`)
				f.text(item.VariantValue)
				f.raw(`</small>`)
			}
			f.raw(` &times; ` + strconv.Itoa(item.Quantity) + `</span><span>`)
			f.text(picker.FormatPrice(item.LineTotal))
			f.raw(`</span><button type="button"` + attr("hx-delete", "/cart/items/"+item.VariantID) + ` hx-target="#cart" hx-swap="outerHTML" class="text-rose-600">Remove</button></li>`)
		}
		f.raw(`</ul><p class="text-right font-semibold">`)
		f.text(picker.FormatPrice(cart.Subtotal))
		f.raw(`</p></section>`)
	})
}

// DraftPanel renders a POS draft with display totals.
func DraftPanel(draft *models.DraftOrder, totals []int64, subtotal int64) templ.Component {
	return component(func(f *fragment) {
		f.raw(`<section id="draft" class="space-y-2">`)
		if draft.IsEmpty() {
			f.raw(`<p class="text-stone-500">No items yet</p></section>`)
			return
		}
		f.raw(`<ul class="divide-y">`)
		for i, line := range draft.Lines {
			f.raw(`<li class="flex justify-between py-2"><span>`)
			f.text(line.ProductName)
			if line.VariantValue != "" && line.VariantValue != "default" {
				f.raw(` <small class="text-stone-500">`)
				f.text(line.VariantValue)
				f.raw(`</small>`)
			}
			f.raw(` &times; ` + strconv.Itoa(line.Quantity) + `</span><span>`)
			if i < len(totals) {
				f.text(picker.FormatPrice(totals[i]))
			}
			f.raw(`</span><button type="button"` + attr("hx-delete", "/pos/draft/lines/"+line.VariantID) + ` hx-target="#draft" hx-swap="outerHTML" class="text-rose-600">Remove</button></li>`)
		}
		f.raw(`</ul><p class="text-right font-semibold">`)
		f.text(picker.FormatPrice(subtotal))
		f.raw(`</p></section>`)
	})
}

func OrderBoard(orders []models.Order) templ.Component {
	return component(func(f *fragment) {
		f.raw(`<ul id="orders" class="grid gap-3 md:grid-cols-3">`)
		for _, order := range orders {
			f.raw(`<li class="rounded border p-3"` + attr("data-status", string(order.Status)) + `><h3 class="font-semibold">#`)
			if order.Number > 0 {
				f.text(strconv.Itoa(order.Number))
			} else {
				f.text(order.ID)
			}
			f.raw(`</h3><p class="text-sm">`)
			f.text(string(order.Type))
			if order.TableID != "" {
				f.raw(` &middot; `)
				f.text(order.TableID)
			}
			f.raw(`</p><ul class="text-sm">`)
			for _, item := range order.Items {
				f.raw(`<li>` + strconv.Itoa(item.Quantity) + ` &times; `)
				f.text(item.ProductName)
				f.raw(`</li>`)
			}
			f.raw(`</ul><p class="text-xs uppercase">`)
			f.text(string(order.Status))
			f.raw(`</p></li>`)
		}
		f.raw(`</ul>`)
	})
}

func TablePlan(tables []models.Table) templ.Component {
	return component(func(f *fragment) {
		f.raw(`<ul id="tables" class="grid grid-cols-3 gap-3 md:grid-cols-6">`)
		for _, table := range tables {
			f.raw(`<li class="rounded border p-3 text-center"` + attr("data-status", table.Status) + `><span class="block font-semibold">`)
			f.text(table.Name)
			f.raw(`</span><span class="block text-xs">`)
			f.text(table.Status)
			f.raw(`</span></li>`)
		}
		f.raw(`</ul>`)
	})
}
