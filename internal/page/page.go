// Package page provides paging requests and paged results for mapper reads.
package page

import (
	"fmt"
	"reflect"

	"github.com/roach88/mapperkit/internal/session"
)

// Request asks for a window of Size rows starting at Offset.
// Request is a paging control: passing it to a mapper method bounds the read.
type Request struct {
	Offset int `json:"offset"`
	Size   int `json:"size"`
}

// Of returns the request for the zero-based page number with the given size.
func Of(number, size int) Request {
	if number < 0 {
		number = 0
	}
	return Request{Offset: number * size, Size: size}
}

// RowBounds implements session.Bounded.
func (r Request) RowBounds() session.RowBounds {
	return session.RowBounds{Offset: r.Offset, Limit: r.Size}
}

// Next returns the request for the following window.
func (r Request) Next() Request {
	return Request{Offset: r.Offset + r.Size, Size: r.Size}
}

// UnknownTotal marks a page whose total row count was not established.
const UnknownTotal int64 = -1

// Page is a window of results together with the request that produced it.
type Page[T any] struct {
	Content []T   `json:"content"`
	Offset  int   `json:"offset"`
	Size    int   `json:"size"`
	Total   int64 `json:"total"`
}

// From builds a page from the rows returned for req.
//
// A short (or unbounded) window is the last one, so its total is exact.
// A full window leaves the total unknown.
func From[T any](content []T, req Request) Page[T] {
	if content == nil {
		content = []T{}
	}
	total := UnknownTotal
	if req.Size <= 0 || len(content) < req.Size {
		total = int64(req.Offset + len(content))
	}
	return Page[T]{
		Content: content,
		Offset:  req.Offset,
		Size:    req.Size,
		Total:   total,
	}
}

// HasNext reports whether a following page may hold rows.
func (p Page[T]) HasNext() bool {
	if p.Total == UnknownTotal {
		return true
	}
	return int64(p.Offset+len(p.Content)) < p.Total
}

// Len returns the number of rows in the page.
func (p Page[T]) Len() int {
	return len(p.Content)
}

// Request returns the request that produced the page.
func (p Page[T]) Request() Request {
	return Request{Offset: p.Offset, Size: p.Size}
}

func (p Page[T]) elemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (p *Page[T]) fill(content reflect.Value, req Request) error {
	items, ok := content.Interface().([]T)
	if !ok {
		return fmt.Errorf("page of %s cannot hold %s", reflect.TypeFor[T](), content.Type())
	}
	*p = From(items, req)
	return nil
}

type paged interface {
	elemType() reflect.Type
}

type filler interface {
	fill(content reflect.Value, req Request) error
}

// ElemType reports whether t is a Page instantiation and returns its row type.
func ElemType(t reflect.Type) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	p, ok := reflect.Zero(t).Interface().(paged)
	if !ok {
		return nil, false
	}
	return p.elemType(), true
}

// Build returns a Page of type t holding content, a slice of t's row type.
func Build(t reflect.Type, content reflect.Value, req Request) (any, error) {
	if _, ok := ElemType(t); !ok {
		return nil, fmt.Errorf("type %s is not a page", t)
	}
	ptr := reflect.New(t)
	if err := ptr.Interface().(filler).fill(content, req); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// FindRequest returns the last Request among args.
// Nil *Request values are ignored.
func FindRequest(args []any) (Request, bool) {
	var (
		req   Request
		found bool
	)
	for _, arg := range args {
		switch v := arg.(type) {
		case Request:
			req, found = v, true
		case *Request:
			if v != nil {
				req, found = *v, true
			}
		}
	}
	return req, found
}
