package catalog

import (
	"slices"
	"strconv"
	"strings"
)

// Index resolves selections against one product's variants without
// re-joining option labels. Each variant's composite value is decomposed
// into per-axis options once, then looked up by the sorted (axis, option)
// tuple set. A value that splits more than one way is indexed under every
// split. byAxis holds split numbers so that narrowing by one axis keeps the
// options of the other axes paired the way the variant value reads.
type Index struct {
	product    *Product
	byKey      map[string]int
	byAxis     map[string]map[string][]int
	splitCount int
	defaultPos int
	duplicates []string
	unmatched  []string
}

func NewIndex(p *Product) *Index {
	ix := &Index{
		product:    p,
		byKey:      make(map[string]int),
		byAxis:     make(map[string]map[string][]int),
		defaultPos: -1,
	}
	if p == nil {
		return ix
	}

	if p.IsSingleVariant() {
		for i, v := range p.Variants {
			if v.Value != DefaultVariantValue {
				continue
			}
			if ix.defaultPos >= 0 {
				ix.duplicates = append(ix.duplicates, v.Value)
				continue
			}
			ix.defaultPos = i
		}
		return ix
	}

	for _, axis := range p.VariantAxes {
		ix.byAxis[axis.Name] = make(map[string][]int)
	}
	for i, v := range p.Variants {
		splits := decompose(v.Value, p.VariantAxes)
		if len(splits) == 0 {
			ix.unmatched = append(ix.unmatched, v.Value)
			continue
		}
		// Equal keys imply equal values, so one shadowed split means all are.
		if _, exists := ix.byKey[splitKey(p.VariantAxes, splits[0])]; exists {
			// first declaration wins
			ix.duplicates = append(ix.duplicates, v.Value)
			continue
		}
		for _, options := range splits {
			ix.byKey[splitKey(p.VariantAxes, options)] = i
			for a, axis := range p.VariantAxes {
				ix.byAxis[axis.Name][options[a]] = append(ix.byAxis[axis.Name][options[a]], ix.splitCount)
			}
			ix.splitCount++
		}
	}
	return ix
}

// Resolve is a convenience for NewIndex(p).Resolve(sel).
func Resolve(p *Product, sel Selection) (Variant, bool) {
	return NewIndex(p).Resolve(sel)
}

// Resolve returns the variant matching sel. Single-variant products ignore
// sel and return their "default" variant.
func (ix *Index) Resolve(sel Selection) (Variant, bool) {
	if ix == nil || ix.product == nil {
		return Variant{}, false
	}
	if ix.product.IsSingleVariant() {
		if ix.defaultPos < 0 {
			return Variant{}, false
		}
		return ix.product.Variants[ix.defaultPos], true
	}
	if !sel.Complete(ix.product) {
		return Variant{}, false
	}

	chosen := make(map[string]string, len(ix.product.VariantAxes))
	for _, axis := range ix.product.VariantAxes {
		chosen[axis.Name] = sel[axis.Name]
	}
	pos, ok := ix.byKey[selectionKey(chosen)]
	if !ok {
		return Variant{}, false
	}
	return ix.product.Variants[pos], true
}

// Available lists, per axis, the declared options that still lead to at
// least one variant given the options chosen on the other axes.
func (ix *Index) Available(sel Selection) map[string][]string {
	out := make(map[string][]string)
	if ix == nil || ix.product == nil || ix.product.IsSingleVariant() {
		return out
	}

	for _, axis := range ix.product.VariantAxes {
		candidates := ix.candidates(sel, axis.Name)
		options := make([]string, 0, len(axis.Options))
		for _, option := range axis.Options {
			for _, split := range ix.byAxis[axis.Name][option] {
				if candidates == nil {
					options = append(options, option)
					break
				}
				if _, ok := candidates[split]; ok {
					options = append(options, option)
					break
				}
			}
		}
		out[axis.Name] = options
	}
	return out
}

// candidates intersects the splits reachable from every chosen axis except
// skip. A nil result means no axis constrains the set.
func (ix *Index) candidates(sel Selection, skip string) map[int]struct{} {
	var set map[int]struct{}
	for _, axis := range ix.product.VariantAxes {
		if axis.Name == skip {
			continue
		}
		option := sel[axis.Name]
		if option == "" {
			continue
		}
		next := make(map[int]struct{})
		for _, split := range ix.byAxis[axis.Name][option] {
			if set == nil {
				next[split] = struct{}{}
				continue
			}
			if _, ok := set[split]; ok {
				next[split] = struct{}{}
			}
		}
		set = next
	}
	return set
}

// Duplicates returns composite values shadowed by an earlier variant.
func (ix *Index) Duplicates() []string {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.duplicates)
}

// Unmatched returns composite values that do not decompose into declared options.
func (ix *Index) Unmatched() []string {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.unmatched)
}

// decompose returns every way value splits into one declared option per
// axis. Options are matched as whole labels so a label containing the
// separator still works, which is also why more than one split can exist.
func decompose(value string, axes []VariantAxis) [][]string {
	if len(axes) == 0 {
		return nil
	}
	var out [][]string
	for _, option := range axes[0].Options {
		if option == "" {
			continue
		}
		if len(axes) == 1 {
			if value == option {
				out = append(out, []string{option})
			}
			continue
		}
		prefix := option + ValueSeparator
		if !strings.HasPrefix(value, prefix) {
			continue
		}
		for _, rest := range decompose(value[len(prefix):], axes[1:]) {
			out = append(out, append([]string{option}, rest...))
		}
	}
	return out
}

func splitKey(axes []VariantAxis, options []string) string {
	chosen := make(map[string]string, len(options))
	for a, axis := range axes {
		chosen[axis.Name] = options[a]
	}
	return selectionKey(chosen)
}

func selectionKey(chosen map[string]string) string {
	names := make([]string, 0, len(chosen))
	for name := range chosen {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(chosen[name]))
	}
	return b.String()
}

// JoinValue builds the composite value the backend uses for a selection.
func JoinValue(p *Product, sel Selection) string {
	if p == nil {
		return ""
	}
	if p.IsSingleVariant() {
		return DefaultVariantValue
	}
	parts := make([]string, 0, len(p.VariantAxes))
	for _, axis := range p.VariantAxes {
		parts = append(parts, sel[axis.Name])
	}
	return strings.Join(parts, ValueSeparator)
}
