package views

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

func Toast(message string, ok bool) templ.Component {
	tone := "border-rose-300 bg-rose-50 text-rose-800"
	if ok {
		tone = "border-emerald-300 bg-emerald-50 text-emerald-800"
	}
	return component(func(f *fragment) {
		f.raw(`<div role="status"` + attr("class", twmerge.Merge("rounded border px-4 py-2 text-sm", tone)) + `>`)
		f.text(message)
		f.raw(`</div>`)
	})
}

func NotFoundPage() templ.Component {
	return component(func(f *fragment) {
		f.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Not found</title>` +
			`<link rel="stylesheet" href="/assets/css/app.css"></head>` +
			`<body class="grid min-h-screen place-items-center"><main class="text-center">` +
			`<h1 class="text-2xl font-semibold">Page not found</h1>` +
			`<a href="/menu" class="text-emerald-700 underline">Back to the menu</a></main></body></html>`)
	})
}
