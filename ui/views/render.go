// Package views renders the htmx fragments served to the menu, POS and admin
// screens.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// fragment accumulates markup and surfaces the first write error.
type fragment struct {
	w   io.Writer
	err error
}

func (f *fragment) raw(s string) {
	if f.err != nil {
		return
	}
	_, f.err = io.WriteString(f.w, s)
}

func (f *fragment) rawf(format string, args ...any) {
	f.raw(fmt.Sprintf(format, args...))
}

// text writes escaped content.
func (f *fragment) text(s string) {
	f.raw(templ.EscapeString(s))
}

func attr(name, value string) string {
	return fmt.Sprintf(` %s="%s"`, name, templ.EscapeString(value))
}

func component(fn func(f *fragment)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		f := &fragment{w: w}
		fn(f)
		return f.err
	})
}

// hxVals encodes a flat map for the hx-vals attribute.
func hxVals(pairs ...string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%q", pairs[i], pairs[i+1])
	}
	b.WriteByte('}')
	return b.String()
}
