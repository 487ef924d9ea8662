package viewport

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ParseSize reads the intrinsic size of an SVG document from the width and
// height attributes of its root element, falling back to the viewBox.
func ParseSize(markup string) (Size, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = false

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return Size{}, errors.New("no svg root element")
		}
		if err != nil {
			return Size{}, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !strings.EqualFold(start.Name.Local, "svg") {
			return Size{}, errors.New("root element is not svg")
		}
		return sizeFromAttrs(start.Attr)
	}
}

func sizeFromAttrs(attrs []xml.Attr) (Size, error) {
	var s Size
	var viewBox string
	for _, a := range attrs {
		switch a.Name.Local {
		case "width":
			s.Width = parseLength(a.Value)
		case "height":
			s.Height = parseLength(a.Value)
		case "viewBox":
			viewBox = a.Value
		}
	}
	if s.Valid() {
		return s, nil
	}

	fields := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 4 {
		w, errW := strconv.ParseFloat(fields[2], 64)
		h, errH := strconv.ParseFloat(fields[3], 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return Size{Width: w, Height: h}, nil
		}
	}
	return Size{}, errors.New("svg has no usable width/height or viewBox")
}

// parseLength accepts plain numbers and px lengths. Percentages and other
// units are reported as 0 so the viewBox is used instead.
func parseLength(v string) float64 {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
