// Package deck is the template engine: it opens one presentation package,
// addresses slides through invisible anchor shapes, rewrites text runs while
// keeping their formatting, and swaps embedded pictures while keeping their
// geometry and z-order. Every untouched part of the package is written back
// byte for byte.
package deck

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// SlideKeyPrefix is the naming convention for anchor shapes. A slide is
// addressable as "cover" when it carries a shape named "SLIDE_KEY_cover".
const SlideKeyPrefix = "SLIDE_KEY_"

// Engine owns one open presentation document for the duration of a report
// run. It is not safe for concurrent use; report tasks run sequentially.
type Engine struct {
	path    string
	arc     *archive
	docs    map[string]*etree.Document // parsed parts, keyed by part path
	dirty   map[string]bool            // parts whose DOM must be re-serialized
	slides  []string                   // slide part paths in presentation order
	layouts []string                   // layout part paths across all masters
	log     *slog.Logger
}

// Slide is a handle to one slide part of the open document.
type Slide struct {
	part string
	root *etree.Element
}

// Part returns the slide's part path inside the package, used as the slide
// identifier in errors and logs.
func (s *Slide) Part() string { return s.part }

// Open reads a presentation template into memory. It fails if the file does
// not exist or is not a presentation package.
func Open(path string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("template not found: %s: %w", path, err)
	}

	arc, err := readArchive(path)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		path:  path,
		arc:   arc,
		docs:  make(map[string]*etree.Document),
		dirty: make(map[string]bool),
		log:   logger,
	}
	if err := e.index(); err != nil {
		return nil, err
	}
	logger.Debug("presentation loaded", "path", path, "slides", len(e.slides), "layouts", len(e.layouts))
	return e, nil
}

// index walks the relationship graph: presentation.xml lists slides in
// order, presentation rels map their rIds to parts, and each master's rels
// list its layouts.
func (e *Engine) index() error {
	presDoc, err := e.doc(partPresentation)
	if err != nil {
		return fmt.Errorf("not a presentation package: %w", err)
	}
	presRels, err := e.relationships(partPresentationRels)
	if err != nil {
		return err
	}

	byID := make(map[string]relationship, len(presRels))
	for _, rel := range presRels {
		byID[rel.ID] = rel
	}

	for _, sldID := range presDoc.FindElements("//p:sldIdLst/p:sldId") {
		rid := sldID.SelectAttrValue("r:id", "")
		rel, ok := byID[rid]
		if !ok || rel.Type != relTypeSlide {
			continue
		}
		e.slides = append(e.slides, resolveTarget(partPresentation, rel.Target))
	}

	for _, rel := range presRels {
		if rel.Type != relTypeSlideMaster {
			continue
		}
		masterPart := resolveTarget(partPresentation, rel.Target)
		masterRels, err := e.relationships(relsPartFor(masterPart))
		if err != nil {
			return err
		}
		for _, mrel := range masterRels {
			if mrel.Type == relTypeSlideLayout {
				e.layouts = append(e.layouts, resolveTarget(masterPart, mrel.Target))
			}
		}
	}
	return nil
}

type relationship struct {
	ID     string
	Type   string
	Target string
}

// relationships parses a .rels part. A missing part yields an empty list,
// matching how readers treat packages without optional relationships.
func (e *Engine) relationships(part string) ([]relationship, error) {
	data, ok := e.arc.part(part)
	if !ok {
		return nil, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse relationships %s: %w", part, err)
	}
	var rels []relationship
	for _, el := range doc.FindElements("//Relationship") {
		rels = append(rels, relationship{
			ID:     el.SelectAttrValue("Id", ""),
			Type:   el.SelectAttrValue("Type", ""),
			Target: el.SelectAttrValue("Target", ""),
		})
	}
	return rels, nil
}

// doc returns the cached DOM for a part, parsing it on first use.
func (e *Engine) doc(part string) (*etree.Document, error) {
	if doc, ok := e.docs[part]; ok {
		return doc, nil
	}
	data, ok := e.arc.part(part)
	if !ok {
		return nil, fmt.Errorf("part not found in package: %s", part)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", part, err)
	}
	e.docs[part] = doc
	return doc, nil
}

func (e *Engine) markDirty(part string) { e.dirty[part] = true }

// SlideByKey scans every slide for an anchor shape named
// SLIDE_KEY_<key> and returns the slide that carries it.
func (e *Engine) SlideByKey(key string) (*Slide, error) {
	anchor := SlideKeyPrefix + key
	for _, part := range e.slides {
		doc, err := e.doc(part)
		if err != nil {
			return nil, err
		}
		tree := spTree(doc.Root())
		if tree == nil {
			continue
		}
		for _, sp := range shapeElements(tree) {
			if shapeName(sp) == anchor {
				e.log.Debug("resolved slide by key", "key", key, "part", part)
				return &Slide{part: part, root: doc.Root()}, nil
			}
		}
	}
	return nil, &SlideNotFoundError{Key: key, Anchor: anchor}
}

// SlideCount reports the number of slides in presentation order.
func (e *Engine) SlideCount() int { return len(e.slides) }

// SlideAt returns a handle to the slide at the given zero-based index.
func (e *Engine) SlideAt(i int) (*Slide, error) {
	if i < 0 || i >= len(e.slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", i, len(e.slides)-1)
	}
	doc, err := e.doc(e.slides[i])
	if err != nil {
		return nil, err
	}
	return &Slide{part: e.slides[i], root: doc.Root()}, nil
}

// Save serializes the document to path, creating parent directories. Parts
// whose DOM was mutated are re-serialized; everything else is written back
// verbatim.
func (e *Engine) Save(path string) error {
	for part := range e.dirty {
		doc, ok := e.docs[part]
		if !ok {
			continue
		}
		data, err := doc.WriteToBytes()
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", part, err)
		}
		e.arc.setPart(part, data)
	}
	if err := e.arc.save(path); err != nil {
		return err
	}
	e.log.Debug("presentation saved", "path", path, "rewritten_parts", len(e.dirty))
	return nil
}

// --- shape tree helpers ---

// spTree returns the shape tree of a slide, layout, or master root element.
func spTree(root *etree.Element) *etree.Element {
	if root == nil {
		return nil
	}
	cSld := root.SelectElement("p:cSld")
	if cSld == nil {
		return nil
	}
	return cSld.SelectElement("p:spTree")
}

// shapeElements returns the direct shape children of a shape tree in
// document order, which is also their z-order.
func shapeElements(tree *etree.Element) []*etree.Element {
	var shapes []*etree.Element
	for _, el := range tree.ChildElements() {
		switch el.Tag {
		case "sp", "pic", "graphicFrame", "grpSp", "cxnSp":
			shapes = append(shapes, el)
		}
	}
	return shapes
}

// shapeName reads the shape's name from its non-visual properties. The
// first cNvPr in document order belongs to the shape itself.
func shapeName(sp *etree.Element) string {
	cNvPr := sp.FindElement(".//p:cNvPr")
	if cNvPr == nil {
		return ""
	}
	return cNvPr.SelectAttrValue("name", "")
}

// findShape resolves a shape by exact name on a surface. Names are assumed
// unique per surface; the first match wins.
func findShape(tree *etree.Element, name string) *etree.Element {
	for _, sp := range shapeElements(tree) {
		if shapeName(sp) == name {
			return sp
		}
	}
	return nil
}

func (e *Engine) resolveShape(slide *Slide, name string) (*etree.Element, error) {
	tree := spTree(slide.root)
	if tree == nil {
		return nil, fmt.Errorf("slide %s has no shape tree", slide.part)
	}
	sp := findShape(tree, name)
	if sp == nil {
		return nil, &ShapeNotFoundError{Name: name, Surface: slide.part}
	}
	return sp, nil
}

// layoutSurfaces returns a handle per layout part, lazily parsed.
func (e *Engine) layoutSurfaces() ([]*Slide, error) {
	surfaces := make([]*Slide, 0, len(e.layouts))
	for _, part := range e.layouts {
		doc, err := e.doc(part)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, &Slide{part: part, root: doc.Root()})
	}
	return surfaces, nil
}

// slideKeyOf extracts the logical key from an anchor shape name, or "".
func slideKeyOf(name string) string {
	if strings.HasPrefix(name, SlideKeyPrefix) {
		return strings.TrimPrefix(name, SlideKeyPrefix)
	}
	return ""
}
