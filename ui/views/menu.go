package views

import (
	"github.com/a-h/templ"

	"github.com/tablesideapp/tableside/internal/catalog"
	"github.com/tablesideapp/tableside/ui/components/picker"
)

// MenuGrid lists products. Unavailable products are shown but cannot be opened.
// tapPath returns the endpoint a product card posts to.
func MenuGrid(products []catalog.Product, tapPath func(productID string) string) templ.Component {
	return component(func(f *fragment) {
		f.raw(`<ul id="menu" class="grid grid-cols-2 gap-4 md:grid-cols-4">`)
		for i := range products {
			p := &products[i]
			f.raw(`<li>`)
			orderable := p.Orderable()
			f.raw(`<button type="button"` + attr("class", picker.ButtonClass(orderable, "w-full bg-white text-left text-stone-900")))
			if orderable {
				f.raw(attr("hx-post", tapPath(p.ID)) + attr("hx-vals", hxVals("productId", p.ID)) + ` hx-target="#picker" hx-swap="outerHTML"`)
			} else {
				f.raw(` disabled`)
			}
			f.raw(`>`)
			if len(p.Images) > 0 {
				f.raw(`<img` + attr("src", p.Images[0]) + attr("alt", p.Name) + ` class="mb-2 aspect-square w-full rounded object-cover">`)
			}
			f.raw(`<span class="block font-medium">`)
			f.text(p.Name)
			f.raw(`</span><span class="block text-sm">`)
			if orderable {
				f.text(picker.FormatPrice(p.BasePrice))
			} else {
				f.text("Unavailable")
			}
			f.raw(`</span></button></li>`)
		}
		f.raw(`</ul>`)
	})
}
