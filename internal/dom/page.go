package dom

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/nao1215/secretsanta/internal/blob"
)

//go:embed default_page.html
var defaultPageHTML []byte

// Document is the page-structure handle the upload handler depends on.
type Document interface {
	// AddEventListener registers a document-level listener (e.g. DOMContentLoaded).
	AddEventListener(eventType string, listener Listener)

	// GetElementByID returns the element with the given id, or nil.
	GetElementByID(id string) *Element

	// CreateElement creates a detached element owned by the document.
	CreateElement(tag string) *Element

	// Body returns the <body> element.
	Body() *Element

	// CreateObjectURL returns a transient reference to b.
	CreateObjectURL(b *blob.Blob) string

	// RevokeObjectURL releases a reference created by CreateObjectURL.
	RevokeObjectURL(url string)
}

// Downloader saves the target of an activated <a download> element.
type Downloader interface {
	// Download stores b under the suggested name and returns where it was written.
	Download(ctx context.Context, name string, b *blob.Blob) (string, error)
}

// Download describes one anchor-triggered download.
type Download struct {
	// Name is the file name suggested by the anchor's download attribute.
	Name string

	// Href is the anchor target at activation time.
	Href string

	// Path is where the Downloader stored the file; empty on failure.
	Path string

	// Size is the number of bytes handed to the Downloader.
	Size int

	// Err is the failure, if any.
	Err error
}

// Page is a headless Document built from HTML markup.
type Page struct {
	root *Element
	body *Element

	urls       *blob.Registry
	downloader Downloader
	logger     *slog.Logger

	listeners listenerSet
	loaded    bool

	mu        sync.Mutex
	downloads []Download
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithOrigin scopes the page's object URLs to origin.
func WithOrigin(origin string) PageOption {
	return func(p *Page) {
		p.urls = blob.NewRegistry(origin)
	}
}

// WithRegistry makes the page use an existing object URL registry.
func WithRegistry(r *blob.Registry) PageOption {
	return func(p *Page) {
		p.urls = r
	}
}

// WithDownloader sets where anchor-triggered downloads are saved.
func WithDownloader(d Downloader) PageOption {
	return func(p *Page) {
		p.downloader = d
	}
}

// WithLogger sets the page logger.
func WithLogger(logger *slog.Logger) PageOption {
	return func(p *Page) {
		p.logger = logger
	}
}

// ParsePage builds a Page from HTML markup.
func ParsePage(r io.Reader, opts ...PageOption) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	p := &Page{listeners: make(listenerSet)}
	for _, opt := range opts {
		opt(p)
	}
	if p.urls == nil {
		p.urls = blob.NewRegistry("")
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.Data == "html" {
			p.root = p.convert(n)
			break
		}
	}
	if p.root == nil {
		// html.Parse always synthesises <html>; keep a root anyway
		p.root = p.CreateElement("html")
	}

	p.body = p.root.Find(func(e *Element) bool { return e.tag == "body" })
	if p.body == nil {
		p.body = p.CreateElement("body")
		p.root.AppendChild(p.body)
	}
	return p, nil
}

// DefaultPage returns the built-in upload page: a form with id "upload-form"
// holding a single file input named "file".
func DefaultPage(opts ...PageOption) (*Page, error) {
	return ParsePage(bytes.NewReader(defaultPageHTML), opts...)
}

// DefaultPageHTML returns the markup of the built-in upload page.
func DefaultPageHTML() []byte {
	return append([]byte(nil), defaultPageHTML...)
}

// convert copies an html.Node element subtree into Elements owned by p.
func (p *Page) convert(n *html.Node) *Element {
	el := p.CreateElement(n.Data)
	for _, a := range n.Attr {
		if a.Namespace == "" {
			el.attrs[strings.ToLower(a.Key)] = a.Val
		}
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			child := p.convert(c)
			child.parent = el
			el.children = append(el.children, child)
		case html.TextNode:
			text.WriteString(c.Data)
		}
	}
	el.text = text.String()
	return el
}

// AddEventListener implements Document.
func (p *Page) AddEventListener(eventType string, listener Listener) {
	p.listeners.add(eventType, listener)
}

// GetElementByID implements Document.
func (p *Page) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	if p.root.ID() == id {
		return p.root
	}
	return p.root.Find(func(e *Element) bool { return e.ID() == id })
}

// CreateElement implements Document.
func (p *Page) CreateElement(tag string) *Element {
	el := NewElement(tag)
	el.owner = p
	return el
}

// Body implements Document.
func (p *Page) Body() *Element {
	return p.body
}

// CreateObjectURL implements Document.
func (p *Page) CreateObjectURL(b *blob.Blob) string {
	return p.urls.CreateObjectURL(b)
}

// RevokeObjectURL implements Document.
func (p *Page) RevokeObjectURL(url string) {
	p.urls.RevokeObjectURL(url)
}

// URLs returns the page's object URL registry.
func (p *Page) URLs() *blob.Registry {
	return p.urls
}

// Load fires DOMContentLoaded. A page is loaded once; later calls do nothing.
func (p *Page) Load(ctx context.Context) {
	if p.loaded {
		return
	}
	p.loaded = true
	p.listeners.dispatch(ctx, NewEvent(EventDOMContentLoaded, nil))
}

// Submit dispatches a submit event on the form with the given id, the way a
// user pressing the submit button would, and returns the dispatched event.
// If no listener prevents the default action the submission would navigate
// away; a headless page only logs it.
func (p *Page) Submit(ctx context.Context, formID string) (*Event, error) {
	form := p.GetElementByID(formID)
	if form == nil {
		return nil, fmt.Errorf("%w: #%s", ErrElementNotFound, formID)
	}
	if form.tag != "form" {
		return nil, fmt.Errorf("%w: #%s is <%s>", ErrNotForm, formID, form.tag)
	}

	e := NewEvent(EventSubmit, form)
	if form.DispatchEvent(ctx, e) {
		p.logger.Warn("form submission was not intercepted; navigation is not supported",
			"form", formID,
		)
	}
	return e, nil
}

// Downloads returns the downloads triggered on this page so far.
func (p *Page) Downloads() []Download {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Download(nil), p.downloads...)
}

// activate runs the default action of an <a> element.
func (p *Page) activate(ctx context.Context, el *Element) {
	if el.tag != "a" {
		return
	}
	href, ok := el.GetAttribute("href")
	if !ok || href == "" {
		return
	}
	name, ok := el.GetAttribute("download")
	if !ok {
		p.logger.Debug("anchor navigation ignored", "href", href)
		return
	}
	if name == "" {
		name = path.Base(href)
	}

	d := Download{Name: name, Href: href}
	defer func() {
		p.mu.Lock()
		p.downloads = append(p.downloads, d)
		p.mu.Unlock()
	}()

	if !blob.IsObjectURL(href) {
		d.Err = fmt.Errorf("%w: %s is not an object URL", ErrUnresolvedURL, href)
		p.logger.Error("download failed", "name", name, "error", d.Err)
		return
	}
	b, ok := p.urls.Resolve(href)
	if !ok {
		d.Err = fmt.Errorf("%w: %s", ErrUnresolvedURL, href)
		p.logger.Error("download failed", "name", name, "error", d.Err)
		return
	}
	d.Size = b.Size()

	if p.downloader == nil {
		d.Err = ErrNoDownloader
		p.logger.Error("download failed", "name", name, "error", d.Err)
		return
	}

	saved, err := p.downloader.Download(ctx, name, b)
	if err != nil {
		d.Err = err
		p.logger.Error("download failed", "name", name, "error", err)
		return
	}
	d.Path = saved
	p.logger.Info("download saved", "name", name, "path", saved, "bytes", d.Size)
}
