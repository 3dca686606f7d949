package dom

import (
	"context"
	"strings"

	"github.com/nao1215/secretsanta/internal/formdata"
)

// activator performs the default action of an activated element.
// Page implements it; detached elements created with NewElement have none.
type activator interface {
	activate(ctx context.Context, el *Element)
}

// Element is a node of the document tree.
// Elements are not safe for concurrent use; a page is driven from one goroutine.
type Element struct {
	tag   string
	attrs map[string]string
	text  string

	value      string
	valueDirty bool
	files      []*formdata.File

	parent   *Element
	children []*Element
	owner    activator

	listeners listenerSet
}

// NewElement creates a detached element. Tag names are case-insensitive.
func NewElement(tag string) *Element {
	return &Element{
		tag:       strings.ToLower(tag),
		attrs:     make(map[string]string),
		listeners: make(listenerSet),
	}
}

// TagName returns the lower-case tag name.
func (el *Element) TagName() string {
	return el.tag
}

// ID returns the element's id attribute.
func (el *Element) ID() string {
	return el.attrs["id"]
}

// GetAttribute returns the named attribute and whether it is present.
func (el *Element) GetAttribute(name string) (string, bool) {
	v, ok := el.attrs[strings.ToLower(name)]
	return v, ok
}

// SetAttribute sets the named attribute.
func (el *Element) SetAttribute(name, value string) {
	el.attrs[strings.ToLower(name)] = value
}

// HasAttribute reports whether the named attribute is present.
func (el *Element) HasAttribute(name string) bool {
	_, ok := el.attrs[strings.ToLower(name)]
	return ok
}

// Parent returns the parent element, or nil for detached and root elements.
func (el *Element) Parent() *Element {
	return el.parent
}

// Children returns a copy of the child list.
func (el *Element) Children() []*Element {
	return append([]*Element(nil), el.children...)
}

// AppendChild moves child under el, detaching it from its previous parent.
func (el *Element) AppendChild(child *Element) {
	if child == nil || child == el {
		return
	}
	child.Remove()
	child.parent = el
	el.children = append(el.children, child)
	child.adopt(el.owner)
}

// Remove detaches the element from its parent. Removing a detached element is a no-op.
func (el *Element) Remove() {
	p := el.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == el {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	el.parent = nil
}

// adopt sets the owner of the subtree rooted at el when it has none yet.
func (el *Element) adopt(owner activator) {
	if owner == nil {
		return
	}
	el.walk(func(e *Element) bool {
		if e.owner == nil {
			e.owner = owner
		}
		return true
	})
}

// AddEventListener registers l for events of eventType dispatched on el.
func (el *Element) AddEventListener(eventType string, l Listener) {
	el.listeners.add(eventType, l)
}

// DispatchEvent runs el's listeners for e and returns !e.DefaultPrevented().
func (el *Element) DispatchEvent(ctx context.Context, e *Event) bool {
	if e.Target == nil {
		e.Target = el
	}
	el.listeners.dispatch(ctx, e)
	return !e.DefaultPrevented()
}

// Click dispatches a click event and, unless a listener prevented it, runs the
// element's default action (for <a download> that is a download).
func (el *Element) Click(ctx context.Context) {
	e := NewEvent(EventClick, el)
	if el.DispatchEvent(ctx, e) && el.owner != nil {
		el.owner.activate(ctx, el)
	}
}

// Value returns the current value of a form control.
func (el *Element) Value() string {
	if el.valueDirty {
		return el.value
	}
	switch el.tag {
	case "textarea":
		return el.text
	case "select":
		if opt := el.selectedOption(); opt != nil {
			return opt.optionValue()
		}
		return ""
	case "option":
		return el.optionValue()
	default:
		return el.attrs["value"]
	}
}

// SetValue sets the current value of a form control.
func (el *Element) SetValue(v string) {
	el.value = v
	el.valueDirty = true
}

// Files returns the files selected in an <input type="file">.
func (el *Element) Files() []*formdata.File {
	return append([]*formdata.File(nil), el.files...)
}

// SetFiles replaces the selection of an <input type="file">.
func (el *Element) SetFiles(files ...*formdata.File) error {
	if !el.isFileInput() {
		return ErrNotFileInput
	}
	el.files = append([]*formdata.File(nil), files...)
	return nil
}

// InputType returns the normalised type of an <input>, "text" by default.
func (el *Element) InputType() string {
	t := strings.ToLower(strings.TrimSpace(el.attrs["type"]))
	if t == "" {
		return "text"
	}
	return t
}

func (el *Element) isFileInput() bool {
	return el.tag == "input" && el.InputType() == "file"
}

// Find returns the first descendant (depth first, document order) matching pred.
func (el *Element) Find(pred func(*Element) bool) *Element {
	var found *Element
	for _, c := range el.children {
		c.walk(func(e *Element) bool {
			if pred(e) {
				found = e
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// FieldByName returns the first form control below el with the given name.
func (el *Element) FieldByName(name string) *Element {
	return el.Find(func(e *Element) bool {
		return isControl(e) && e.attrs["name"] == name
	})
}

// walk visits el and its descendants in document order until fn returns false.
func (el *Element) walk(fn func(*Element) bool) bool {
	if !fn(el) {
		return false
	}
	for _, c := range el.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (el *Element) selectedOption() *Element {
	var first, selected *Element
	el.walk(func(e *Element) bool {
		if e.tag != "option" {
			return true
		}
		if first == nil {
			first = e
		}
		if e.HasAttribute("selected") {
			selected = e
			return false
		}
		return true
	})
	if selected != nil {
		return selected
	}
	return first
}

func (el *Element) optionValue() string {
	if v, ok := el.attrs["value"]; ok {
		return v
	}
	return strings.TrimSpace(el.text)
}

func isControl(e *Element) bool {
	switch e.tag {
	case "input", "select", "textarea", "button":
		return true
	}
	return false
}
