package deck

import (
	"bytes"
	"fmt"
	"path"
	"strings"
)

// OOXML relationship and content-type constants.
const (
	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
)

const (
	partPresentation     = "ppt/presentation.xml"
	partPresentationRels = "ppt/_rels/presentation.xml.rels"
	partContentTypes     = "[Content_Types].xml"
)

// sniffImageExtension returns the OOXML media extension for the given image
// bytes based on their magic numbers. Unknown data is stored as png, which
// matches what PowerPoint itself falls back to.
func sniffImageExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	default:
		return "png"
	}
}

func imageContentType(ext string) string {
	switch ext {
	case "png":
		return "image/png"
	case "jpeg", "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}

// resolveTarget resolves a relationship target against the directory of the
// part that owns the relationships file. Targets may be relative ("../media/
// image1.png", "slides/slide1.xml") or already rooted at the package root.
func resolveTarget(ownerPart, target string) string {
	target = strings.TrimPrefix(target, "/")
	base := path.Dir(ownerPart)
	resolved := path.Clean(path.Join(base, target))
	return resolved
}

// relsPartFor returns the relationships part path for a given part, e.g.
// ppt/slides/slide1.xml -> ppt/slides/_rels/slide1.xml.rels.
func relsPartFor(part string) string {
	return fmt.Sprintf("%s/_rels/%s.rels", path.Dir(part), path.Base(part))
}
