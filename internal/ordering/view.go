package ordering

const (
	LabelNotAvailable = "not available"
	LabelOutOfStock   = "out of stock"
)

// View is what the UI layer renders for an open picker.
type View struct {
	State     string       `json:"state"`
	Product   *ProductView `json:"product,omitempty"`
	Axes      []AxisView   `json:"axes,omitempty"`
	Variant   *VariantView `json:"variant,omitempty"`
	Quantity  int          `json:"quantity"`
	Bounds    Bounds       `json:"bounds"`
	CanCommit bool         `json:"canCommit"`
	Label     string       `json:"label,omitempty"`
}

type ProductView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Images        []string `json:"images,omitempty"`
	SingleVariant bool     `json:"singleVariant"`
}

type AxisView struct {
	Name     string       `json:"name"`
	Selected string       `json:"selected"`
	Options  []OptionView `json:"options"`
}

type OptionView struct {
	Label     string `json:"label"`
	Selected  bool   `json:"selected"`
	Available bool   `json:"available"`
}

type VariantView struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

func (s *Selector) View() View {
	view := View{
		State:    s.State().String(),
		Quantity: s.quantity,
		Bounds:   s.Bounds(),
	}
	if s.product == nil {
		return view
	}

	p := s.product
	view.Product = &ProductView{
		ID:            p.ID,
		Name:          p.Name,
		Images:        p.Images,
		SingleVariant: p.IsSingleVariant(),
	}

	if !p.IsSingleVariant() {
		available := s.Available()
		for _, axis := range p.VariantAxes {
			reachable := make(map[string]bool, len(available[axis.Name]))
			for _, option := range available[axis.Name] {
				reachable[option] = true
			}
			av := AxisView{Name: axis.Name, Selected: s.selection[axis.Name]}
			for _, option := range axis.Options {
				av.Options = append(av.Options, OptionView{
					Label:     option,
					Selected:  s.selection[axis.Name] == option,
					Available: reachable[option],
				})
			}
			view.Axes = append(view.Axes, av)
		}
	}

	if v, ok := s.Resolved(); ok {
		view.Variant = &VariantView{ID: v.ID, Value: v.Value, Price: p.PriceOf(v), Stock: v.Stock}
		if v.Stock <= 0 {
			view.Label = LabelOutOfStock
		}
		view.CanCommit = v.Stock > 0 && s.quantity > 0
		return view
	}

	if p.IsSingleVariant() || s.selection.Complete(p) {
		view.Label = LabelNotAvailable
	}
	return view
}
