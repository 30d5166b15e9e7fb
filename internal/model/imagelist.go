package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// imageListSeparator is the on-disk delimiter. Paths containing it are
// rejected at the boundary; parsing the stored string would otherwise
// corrupt silently.
const imageListSeparator = ","

var ErrImagePathSeparator = errors.New("image path must not contain a comma")

// ImageList is an ordered collection of image references. It is stored
// as a single delimited column; encoding and decoding happen only here,
// at the persistence edge.
type ImageList []string

// Value implements driver.Valuer. An empty list stores as NULL.
func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	for _, p := range l {
		if strings.Contains(p, imageListSeparator) {
			return nil, fmt.Errorf("encode image list %q: %w", p, ErrImagePathSeparator)
		}
	}
	return strings.Join(l, imageListSeparator), nil
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		*l = parseImageList(v)
		return nil
	case []byte:
		*l = parseImageList(string(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ImageList", src)
	}
}

func parseImageList(s string) ImageList {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, imageListSeparator)
	list := make(ImageList, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			list = append(list, p)
		}
	}
	return list
}

// Append returns a new list with paths added after the existing
// entries, preserving order. Paths containing the delimiter are
// rejected.
func (l ImageList) Append(paths ...string) (ImageList, error) {
	out := make(ImageList, len(l), len(l)+len(paths))
	copy(out, l)
	for _, p := range paths {
		if strings.Contains(p, imageListSeparator) {
			return nil, fmt.Errorf("append image %q: %w", p, ErrImagePathSeparator)
		}
		out = append(out, p)
	}
	return out, nil
}

// Remove deletes the first entry equal to path and reports whether an
// entry was removed. Other entries keep their order.
func (l ImageList) Remove(path string) (ImageList, bool) {
	for i, p := range l {
		if p == path {
			out := make(ImageList, 0, len(l)-1)
			out = append(out, l[:i]...)
			out = append(out, l[i+1:]...)
			return out, true
		}
	}
	return l, false
}

func (l ImageList) Contains(path string) bool {
	for _, p := range l {
		if p == path {
			return true
		}
	}
	return false
}
