package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Standard event names.
const (
	EventClick  = "click"
	EventSubmit = "submit"
	EventInput  = "input"
	EventChange = "change"
)

// hiddenClass hides an element, following the templates' CSS conventions.
const hiddenClass = "d-none"

// Event describes a user interaction delivered to a handler.
type Event struct {
	Type   string
	Target string
	// Value is the element's value for input and change events.
	Value string
	// Form holds the named field values for submit events.
	Form map[string]string
	// Data holds the target's data-* attributes without the prefix.
	Data map[string]string
}

// Handler reacts to an event.
type Handler func(ctx context.Context, ev Event)

// Page is a mounted view template. Handlers belong to the page: a freshly
// parsed page starts with none, so re-rendering a view never stacks
// listeners from a previous visit.
type Page struct {
	template string
	doc      *goquery.Document
	handlers map[string][]Handler
}

// ParsePage parses template markup into a page.
func ParsePage(template, markup string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", template, err)
	}
	return &Page{template: template, doc: doc, handlers: make(map[string][]Handler)}, nil
}

// Template returns the template the page was parsed from.
func (p *Page) Template() string {
	return p.template
}

func (p *Page) el(id string) *goquery.Selection {
	return p.doc.Find(fmt.Sprintf(`[id=%q]`, id)).First()
}

// Has reports whether an element with the id exists.
func (p *Page) Has(id string) bool {
	return p.el(id).Length() > 0
}

// Text returns the text content of the element.
func (p *Page) Text(id string) string {
	return strings.TrimSpace(p.el(id).Text())
}

// SetText replaces the element's content with escaped text.
func (p *Page) SetText(id, text string) {
	sel := p.el(id)
	p.forgetDescendants(sel)
	sel.SetText(text)
}

// HTML returns the inner markup of the element.
func (p *Page) HTML(id string) string {
	html, _ := p.el(id).Html()
	return html
}

// SetHTML replaces the element's inner markup. Handlers bound to elements
// that were inside the old markup are dropped with them.
func (p *Page) SetHTML(id, html string) {
	sel := p.el(id)
	p.forgetDescendants(sel)
	sel.SetHtml(html)
}

// AppendHTML appends markup to the element.
func (p *Page) AppendHTML(id, html string) {
	p.el(id).AppendHtml(html)
}

// PrependHTML prepends markup to the element.
func (p *Page) PrependHTML(id, html string) {
	p.el(id).PrependHtml(html)
}

// Attr returns an attribute value.
func (p *Page) Attr(id, name string) string {
	v, _ := p.el(id).Attr(name)
	return v
}

// SetAttr sets an attribute.
func (p *Page) SetAttr(id, name, value string) {
	p.el(id).SetAttr(name, value)
}

// AddClass adds a CSS class.
func (p *Page) AddClass(id, class string) {
	p.el(id).AddClass(class)
}

// RemoveClass removes a CSS class.
func (p *Page) RemoveClass(id, class string) {
	p.el(id).RemoveClass(class)
}

// HasClass reports whether the element carries the class.
func (p *Page) HasClass(id, class string) bool {
	return p.el(id).HasClass(class)
}

// Show makes the element visible.
func (p *Page) Show(id string) {
	p.RemoveClass(id, hiddenClass)
}

// Hide hides the element.
func (p *Page) Hide(id string) {
	p.AddClass(id, hiddenClass)
}

// Visible reports whether the element exists and is not hidden.
func (p *Page) Visible(id string) bool {
	return p.Has(id) && !p.HasClass(id, hiddenClass)
}

// SetDisabled toggles the disabled attribute.
func (p *Page) SetDisabled(id string, disabled bool) {
	if disabled {
		p.el(id).SetAttr("disabled", "disabled")
		return
	}
	p.el(id).RemoveAttr("disabled")
}

// Disabled reports whether the element is disabled.
func (p *Page) Disabled(id string) bool {
	_, ok := p.el(id).Attr("disabled")
	return ok
}

// Value returns the current value of a form control.
func (p *Page) Value(id string) string {
	return controlValue(p.el(id))
}

// SetValue sets the value of a form control.
func (p *Page) SetValue(id, value string) {
	setControlValue(p.el(id), value)
}

// FormValues collects the named controls inside a form.
func (p *Page) FormValues(formID string) map[string]string {
	values := make(map[string]string)
	p.el(formID).Find("input[name], textarea[name], select[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		values[name] = controlValue(s)
	})
	return values
}

// ResetForm clears all controls inside a form.
func (p *Page) ResetForm(formID string) {
	p.el(formID).Find("input[name], textarea[name]").Each(func(_ int, s *goquery.Selection) {
		setControlValue(s, "")
	})
}

// On adds a handler for an event on the element.
func (p *Page) On(id, event string, h Handler) {
	key := handlerKey(id, event)
	p.handlers[key] = append(p.handlers[key], h)
}

// Set replaces all handlers for an event on the element with h.
func (p *Page) Set(id, event string, h Handler) {
	p.handlers[handlerKey(id, event)] = []Handler{h}
}

// HandlerCount returns how many handlers are bound for an event.
func (p *Page) HandlerCount(id, event string) int {
	return len(p.handlers[handlerKey(id, event)])
}

// Trigger delivers an event to the element's handlers. Disabled or missing
// elements ignore events. It reports whether any handler ran.
func (p *Page) Trigger(ctx context.Context, id string, ev Event) bool {
	sel := p.el(id)
	if sel.Length() == 0 || p.Disabled(id) {
		return false
	}
	handlers := p.handlers[handlerKey(id, ev.Type)]
	if len(handlers) == 0 {
		return false
	}

	ev.Target = id
	if ev.Data == nil {
		ev.Data = dataAttrs(sel)
	}
	for _, h := range append([]Handler(nil), handlers...) {
		h(ctx, ev)
	}
	return true
}

// Click clicks the element.
func (p *Page) Click(ctx context.Context, id string) bool {
	return p.Trigger(ctx, id, Event{Type: EventClick})
}

// Input sets a control's value and fires an input event.
func (p *Page) Input(ctx context.Context, id, value string) bool {
	p.SetValue(id, value)
	return p.Trigger(ctx, id, Event{Type: EventInput, Value: value})
}

// Change sets a control's value and fires a change event.
func (p *Page) Change(ctx context.Context, id, value string) bool {
	p.SetValue(id, value)
	return p.Trigger(ctx, id, Event{Type: EventChange, Value: value})
}

// Submit fills the named fields of a form and submits it.
func (p *Page) Submit(ctx context.Context, formID string, fields map[string]string) bool {
	form := p.el(formID)
	for name, value := range fields {
		setControlValue(form.Find(fmt.Sprintf(`[name=%q]`, name)).First(), value)
	}
	return p.Trigger(ctx, formID, Event{Type: EventSubmit, Form: p.FormValues(formID)})
}

// IDs lists the ids of elements matching a CSS selector, in document order.
func (p *Page) IDs(selector string) []string {
	var ids []string
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok {
			ids = append(ids, id)
		}
	})
	return ids
}

// Count returns how many elements match a CSS selector.
func (p *Page) Count(selector string) int {
	return p.doc.Find(selector).Length()
}

// Markup returns the page body markup.
func (p *Page) Markup() string {
	html, _ := p.doc.Find("body").Html()
	return html
}

// Render returns the visible text of the page, one block per line.
func (p *Page) Render() string {
	body := p.doc.Find("body").Clone()
	body.Find("." + hiddenClass + ", script, style").Remove()

	var lines []string
	for _, line := range strings.Split(body.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (p *Page) forgetDescendants(sel *goquery.Selection) {
	sel.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		prefix := id + "\x00"
		for key := range p.handlers {
			if strings.HasPrefix(key, prefix) {
				delete(p.handlers, key)
			}
		}
	})
}

func handlerKey(id, event string) string {
	return id + "\x00" + event
}

func controlValue(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "textarea":
		return s.Text()
	case "select":
		if v, ok := s.Attr("value"); ok {
			return v
		}
		opt := s.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = s.Find("option").First()
		}
		if v, ok := opt.Attr("value"); ok {
			return v
		}
		return strings.TrimSpace(opt.Text())
	default:
		v, _ := s.Attr("value")
		return v
	}
}

func setControlValue(s *goquery.Selection, value string) {
	if s.Length() == 0 {
		return
	}
	if goquery.NodeName(s) == "textarea" {
		s.SetText(value)
		return
	}
	s.SetAttr("value", value)
}

func dataAttrs(s *goquery.Selection) map[string]string {
	data := make(map[string]string)
	if s.Length() == 0 {
		return data
	}
	for _, attr := range s.Nodes[0].Attr {
		if strings.HasPrefix(attr.Key, "data-") {
			data[strings.TrimPrefix(attr.Key, "data-")] = attr.Val
		}
	}
	return data
}
