package deck

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/beevik/etree"
)

// Geometry is a picture's frame in EMU.
type Geometry struct {
	Left, Top, Width, Height int64
}

// ZOrderResult reports the advisory z-order restoration performed by
// ReplaceImage. Restored is false when the recorded sibling position could
// not be re-established; the replacement itself still succeeded.
type ZOrderResult struct {
	Index    int
	Restored bool
}

// ReplaceImage swaps the image of a named picture shape for the supplied
// bytes. The new picture keeps the old shape's name and exact frame
// (left/top/width/height). Restoring the original z-order is best effort and
// never fails the operation.
func (e *Engine) ReplaceImage(slide *Slide, shapeName string, img []byte) (ZOrderResult, error) {
	sp, err := e.resolveShape(slide, shapeName)
	if err != nil {
		return ZOrderResult{}, err
	}
	if sp.Tag != "pic" {
		return ZOrderResult{}, fmt.Errorf("shape %q on %s (element <%s:%s>): %w",
			shapeName, slide.part, sp.Space, sp.Tag, ErrNotAPicture)
	}

	tree := sp.Parent()

	// Store the image as a new media part and relate the slide to it.
	relID, err := e.addImagePart(slide.part, img)
	if err != nil {
		return ZOrderResult{}, err
	}

	// Record position among siblings before detaching.
	tokenIdx := tokenIndex(tree, sp)
	tree.RemoveChild(sp)

	// The replacement is a copy of the old picture element with its blip
	// repointed, so name, geometry, and every other property carry over.
	newPic := sp.Copy()
	blip := newPic.FindElement("p:blipFill/a:blip")
	if blip == nil {
		blip = newPic.CreateElement("p:blipFill").CreateElement("a:blip")
	}
	blip.CreateAttr("r:embed", relID) // replaces any existing embed
	tree.AddChild(newPic)

	res := ZOrderResult{Index: tokenIdx}
	if tokenIdx >= 0 && tokenIdx <= len(tree.Child)-1 {
		tree.RemoveChild(newPic)
		tree.InsertChildAt(tokenIdx, newPic)
		res.Restored = true
	} else {
		e.log.Warn("could not restore picture z-order", "shape", shapeName, "slide", slide.part)
	}

	e.markDirty(slide.part)
	e.log.Debug("replaced image", "shape", shapeName, "slide", slide.part, "rel", relID, "bytes", len(img))
	return res, nil
}

// PictureGeometry reads a picture shape's frame, mostly for tests and the
// inspect command.
func (e *Engine) PictureGeometry(slide *Slide, shapeName string) (Geometry, error) {
	sp, err := e.resolveShape(slide, shapeName)
	if err != nil {
		return Geometry{}, err
	}
	return readGeometry(sp), nil
}

func readGeometry(sp *etree.Element) Geometry {
	var g Geometry
	xfrm := sp.FindElement("p:spPr/a:xfrm")
	if xfrm == nil {
		return g
	}
	if off := xfrm.SelectElement("a:off"); off != nil {
		g.Left = parseEMU(off.SelectAttrValue("x", "0"))
		g.Top = parseEMU(off.SelectAttrValue("y", "0"))
	}
	if ext := xfrm.SelectElement("a:ext"); ext != nil {
		g.Width = parseEMU(ext.SelectAttrValue("cx", "0"))
		g.Height = parseEMU(ext.SelectAttrValue("cy", "0"))
	}
	return g
}

func parseEMU(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

var mediaImagePattern = regexp.MustCompile(`^ppt/media/image(\d+)\.`)

// addImagePart stores img as the next free ppt/media/imageN part, registers
// its content type, and appends an image relationship to the slide's rels.
// It returns the new relationship ID.
func (e *Engine) addImagePart(slidePart string, img []byte) (string, error) {
	ext := sniffImageExtension(img)

	maxImage := 0
	for _, name := range e.arc.order {
		m := mediaImagePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxImage {
			maxImage = n
		}
	}
	mediaPart := fmt.Sprintf("ppt/media/image%d.%s", maxImage+1, ext)
	e.arc.setPart(mediaPart, img)

	if err := e.ensureImageContentType(ext); err != nil {
		return "", err
	}
	return e.addImageRelationship(slidePart, mediaPart)
}

// ensureImageContentType registers a Default content type for the image
// extension in [Content_Types].xml if one is not present.
func (e *Engine) ensureImageContentType(ext string) error {
	doc, err := e.doc(partContentTypes)
	if err != nil {
		return err
	}
	root := doc.Root()
	for _, def := range root.SelectElements("Default") {
		if def.SelectAttrValue("Extension", "") == ext {
			return nil
		}
	}
	def := etree.NewElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", imageContentType(ext))
	root.InsertChildAt(0, def)
	e.markDirty(partContentTypes)
	return nil
}

var relIDPattern = regexp.MustCompile(`^rId(\d+)$`)

// addImageRelationship appends an image relationship to the slide's rels
// part, creating the part when the slide has none yet.
func (e *Engine) addImageRelationship(slidePart, mediaPart string) (string, error) {
	relsPart := relsPartFor(slidePart)

	var doc *etree.Document
	if _, ok := e.arc.part(relsPart); ok {
		var err error
		doc, err = e.doc(relsPart)
		if err != nil {
			return "", err
		}
	} else {
		doc = etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root := doc.CreateElement("Relationships")
		root.CreateAttr("xmlns", nsRelationships)
		e.docs[relsPart] = doc
		e.arc.setPart(relsPart, nil) // reserve entry order; content written on save
	}

	root := doc.Root()
	maxID := 0
	for _, rel := range root.SelectElements("Relationship") {
		m := relIDPattern.FindStringSubmatch(rel.SelectAttrValue("Id", ""))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxID {
			maxID = n
		}
	}
	relID := fmt.Sprintf("rId%d", maxID+1)

	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", relID)
	rel.CreateAttr("Type", relTypeImage)
	// Targets are relative to the slide part's directory.
	rel.CreateAttr("Target", "../media/"+mediaPart[len("ppt/media/"):])
	e.markDirty(relsPart)
	return relID, nil
}
