package deck

// Read-only inventory used by the inspect command and by report preflight
// logging.

// ShapeInfo describes one shape on a surface.
type ShapeInfo struct {
	Name     string
	Kind     string // sp, pic, graphicFrame, grpSp, cxnSp
	HasText  bool
	Geometry Geometry
}

// Shapes lists the shapes of a slide in z-order.
func (e *Engine) Shapes(slide *Slide) []ShapeInfo {
	tree := spTree(slide.root)
	if tree == nil {
		return nil
	}
	shapes := shapeElements(tree)
	infos := make([]ShapeInfo, 0, len(shapes))
	for _, sp := range shapes {
		infos = append(infos, ShapeInfo{
			Name:     shapeName(sp),
			Kind:     sp.Tag,
			HasText:  sp.SelectElement("p:txBody") != nil,
			Geometry: readGeometry(sp),
		})
	}
	return infos
}

// SlideKeys lists the logical keys of all slides that carry an anchor shape,
// in presentation order. Slides without an anchor are reported as "".
func (e *Engine) SlideKeys() ([]string, error) {
	keys := make([]string, 0, len(e.slides))
	for _, part := range e.slides {
		doc, err := e.doc(part)
		if err != nil {
			return nil, err
		}
		key := ""
		if tree := spTree(doc.Root()); tree != nil {
			for _, sp := range shapeElements(tree) {
				if k := slideKeyOf(shapeName(sp)); k != "" {
					key = k
					break
				}
			}
		}
		keys = append(keys, key)
	}
	return keys, nil
}
