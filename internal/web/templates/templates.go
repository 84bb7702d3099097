// Package templates renders the converter page.
//
// Components are built with templ.ComponentFunc so they compose with
// templ.Handler and any generated templ code.
package templates

import (
	"context"
	"io"
	"strings"

	"github.com/JonMunkholm/unitconv/internal/core"
	"github.com/a-h/templ"
)

// PageData is everything the converter page shows.
type PageData struct {
	Categories []string
	Category   string
	Units      []string

	// SourceUnits limits the From select; empty means Units.
	SourceUnits []string

	From  string
	To    string
	Value string

	// Result is the last successful conversion, shown in the sidebar.
	Result *core.Result
	Error  *core.UserMessage

	// Note is shown under the form, e.g. "Temperature converts from Celsius only".
	Note string
}

// htmlWriter stops writing after the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if hw.err != nil {
			return
		}
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Page renders the full converter page.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>Unit Converter</title><style>`, pageStyle, `</style></head><body>`)
		hw.component(ctx, Sidebar(data.Categories, data.Result))
		hw.raw(`<main><h1>Unit Converter</h1>`)
		hw.component(ctx, CategoryForm(data.Categories, data.Category))
		hw.component(ctx, ConverterForm(data))
		hw.raw(`<div id="result">`)
		hw.component(ctx, ResultPanel(data.Result, data.Error))
		hw.raw(`</div></main></body></html>`)
		return hw.err
	})
}

// Sidebar lists the categories and the last conversion.
func Sidebar(categories []string, result *core.Result) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<aside class="sidebar"><div class="sidebar-title">Unit Conversion Information</div>`,
			`<div class="sidebar-info"><p>Convert between units in these categories:</p><ul>`)
		for _, c := range categories {
			hw.raw(`<li>`)
			hw.text(c)
			hw.raw(`</li>`)
		}
		hw.raw(`</ul><p>Select a category and units to perform the conversion.</p></div>`)
		if result != nil {
			hw.raw(`<h3>Conversion Result</h3><p class="last-result">`)
			hw.text(result.Display)
			hw.raw(`</p>`)
		}
		hw.raw(`</aside>`)
		return hw.err
	})
}

// CategoryForm is the category picker. Changing it reloads the unit lists.
func CategoryForm(categories []string, selected string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<form method="get" action="/" class="category">`,
			`<label for="category">Select Category</label>`,
			`<select id="category" name="category" onchange="this.form.submit()">`)
		options(hw, categories, selected)
		hw.raw(`</select><noscript><button type="submit">Select</button></noscript></form>`)
		return hw.err
	})
}

// ConverterForm posts a conversion for the selected category.
func ConverterForm(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<form method="post" action="/convert" class="converter">`,
			`<input type="hidden" name="category" value="`)
		hw.text(data.Category)
		hw.raw(`"><div class="columns"><div><label for="from">From Unit</label><select id="from" name="from">`)
		sources := data.SourceUnits
		if len(sources) == 0 {
			sources = data.Units
		}
		options(hw, sources, data.From)
		hw.raw(`</select></div><div><label for="to">To Unit</label><select id="to" name="to">`)
		options(hw, data.Units, data.To)
		hw.raw(`</select></div></div>`,
			`<label for="value">Enter Value to Convert</label>`,
			`<input id="value" name="value" type="text" inputmode="decimal" value="`)
		hw.text(data.Value)
		hw.raw(`">`)
		if data.Note != "" {
			hw.raw(`<p class="note">`)
			hw.text(data.Note)
			hw.raw(`</p>`)
		}
		hw.raw(`<div class="columns">`,
			`<button type="submit" name="action" value="convert">Convert</button>`,
			`<button type="submit" name="action" value="reset" class="secondary">Reset</button>`,
			`</div></form>`)
		return hw.err
	})
}

// ResultPanel shows the conversion outcome. It renders nothing when there
// is neither a result nor an error.
func ResultPanel(result *core.Result, msg *core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		switch {
		case msg != nil:
			return ErrorAlert(msg.Message, msg.Action, msg.Code).Render(ctx, w)
		case result != nil:
			hw := &htmlWriter{w: w}
			hw.raw(`<div class="success" role="status">Converted Value: `)
			hw.text(result.Formatted + " " + result.To)
			hw.raw(`</div>`)
			return hw.err
		}
		return nil
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div class="error" role="alert"><strong>`)
		hw.text(message)
		hw.raw(`</strong>`)
		if action != "" {
			hw.raw(`<p>`)
			hw.text(action)
			hw.raw(`</p>`)
		}
		if code != "" {
			hw.raw(`<small>Code: `)
			hw.text(code)
			hw.raw(`</small>`)
		}
		hw.raw(`</div>`)
		return hw.err
	})
}

func options(hw *htmlWriter, values []string, selected string) {
	for _, v := range values {
		hw.raw(`<option value="`)
		hw.text(v)
		hw.raw(`"`)
		if v == selected {
			hw.raw(` selected`)
		}
		hw.raw(`>`)
		hw.text(v)
		hw.raw(`</option>`)
	}
}

var pageStyle = strings.Join([]string{
	`body{margin:0;display:flex;font-family:system-ui,sans-serif;background:#f5f7fa;color:#1f2937}`,
	`.sidebar{width:16rem;padding:1.5rem;background:#1e3a5f;color:#fff;min-height:100vh}`,
	`.sidebar-title{font-size:1.2rem;font-weight:600;margin-bottom:1rem}`,
	`main{flex:1;max-width:40rem;padding:2rem}`,
	`label{display:block;margin:.75rem 0 .25rem;font-weight:500}`,
	`select,input{width:100%;padding:.5rem;box-sizing:border-box}`,
	`.columns{display:flex;gap:1rem}.columns>*{flex:1}`,
	`button{margin-top:1rem;width:100%;padding:.6rem;border:0;border-radius:4px;background:#2563eb;color:#fff}`,
	`button.secondary{background:#6b7280}`,
	`.success{margin-top:1rem;padding:1rem;background:#dcfce7;border-radius:4px}`,
	`.error{margin-top:1rem;padding:1rem;background:#fee2e2;border-radius:4px}`,
	`.note{font-size:.9rem;color:#6b7280}`,
}, "")
