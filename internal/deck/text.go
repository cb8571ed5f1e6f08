package deck

import (
	"fmt"

	"github.com/beevik/etree"
)

// SetText writes text into a named shape on a slide.
//
// With preserve=true the replacement text goes into the first run of the
// first paragraph, which keeps that run's formatting; every other run in the
// frame is emptied but not removed, so no leftover text survives and no run
// is duplicated. With preserve=false the frame is reduced to a single
// plain-text paragraph and the original formatting may be lost.
func (e *Engine) SetText(slide *Slide, shapeName, text string, preserve bool) error {
	sp, err := e.resolveShape(slide, shapeName)
	if err != nil {
		return err
	}
	if err := e.setTextOnShape(sp, slide.part, shapeName, text, preserve); err != nil {
		return err
	}
	e.markDirty(slide.part)
	return nil
}

// SetTextOnLayouts applies the same text replacement to every shape with the
// given name across every layout of every master. Footers live on layouts
// rather than slides, so this is how they are updated. Returns the number of
// shapes updated; zero matches is an error.
func (e *Engine) SetTextOnLayouts(name, text string, preserve bool) (int, error) {
	surfaces, err := e.layoutSurfaces()
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, layout := range surfaces {
		tree := spTree(layout.root)
		if tree == nil {
			continue
		}
		for _, sp := range shapeElements(tree) {
			if shapeName(sp) != name {
				continue
			}
			if err := e.setTextOnShape(sp, layout.part, name, text, preserve); err != nil {
				return updated, err
			}
			e.markDirty(layout.part)
			updated++
		}
	}
	if updated == 0 {
		return 0, &ShapeNotFoundError{Name: name, Surface: "any slide layout"}
	}
	return updated, nil
}

func (e *Engine) setTextOnShape(sp *etree.Element, surface, name, text string, preserve bool) error {
	txBody := sp.SelectElement("p:txBody")
	if txBody == nil {
		return fmt.Errorf("shape %q on %s: %w", name, surface, ErrNoTextFrame)
	}

	if !preserve {
		clearTextBody(txBody, text)
		e.log.Debug("set text (no format)", "shape", name, "surface", surface)
		return nil
	}

	paragraphs := txBody.SelectElements("a:p")
	if len(paragraphs) == 0 {
		// Degenerate template: no paragraph to take formatting from.
		p := txBody.CreateElement("a:p")
		appendRun(p, text)
		e.log.Warn("text frame had no paragraphs, formatting not preserved", "shape", name, "surface", surface)
		return nil
	}

	p0 := paragraphs[0]
	runs := p0.SelectElements("a:r")
	if len(runs) == 0 {
		// A run created here carries no rPr, so preservation is forfeited.
		insertRunAfterProperties(p0, text)
		e.log.Warn("first paragraph had no runs, formatting not preserved", "shape", name, "surface", surface)
		return nil
	}

	setRunText(runs[0], text)
	for _, r := range runs[1:] {
		setRunText(r, "")
	}
	for _, p := range paragraphs[1:] {
		for _, r := range p.SelectElements("a:r") {
			setRunText(r, "")
		}
	}
	e.log.Debug("set text (preserve format)", "shape", name, "surface", surface)
	return nil
}

// clearTextBody drops every paragraph and leaves one plain paragraph holding
// the given text.
func clearTextBody(txBody *etree.Element, text string) {
	for _, p := range txBody.SelectElements("a:p") {
		txBody.RemoveChild(p)
	}
	p := txBody.CreateElement("a:p")
	appendRun(p, text)
}

// setRunText replaces the run's a:t content, creating the element if the
// run has none.
func setRunText(run *etree.Element, text string) {
	t := run.SelectElement("a:t")
	if t == nil {
		t = run.CreateElement("a:t")
	}
	t.SetText(text)
}

func appendRun(p *etree.Element, text string) *etree.Element {
	r := p.CreateElement("a:r")
	r.CreateElement("a:t").SetText(text)
	return r
}

// insertRunAfterProperties places a new run after the paragraph properties
// (a:pPr must stay first) and before any a:endParaRPr (which must stay last).
func insertRunAfterProperties(p *etree.Element, text string) {
	r := etree.NewElement("a:r")
	r.CreateElement("a:t").SetText(text)

	if end := p.SelectElement("a:endParaRPr"); end != nil {
		if idx := tokenIndex(p, end); idx >= 0 {
			p.InsertChildAt(idx, r)
			return
		}
	}
	p.AddChild(r)
}

// tokenIndex returns the index of a child token within its parent, or -1.
func tokenIndex(parent *etree.Element, child etree.Token) int {
	for i, tok := range parent.Child {
		if tok == child {
			return i
		}
	}
	return -1
}
