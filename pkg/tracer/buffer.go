package tracer

// Buffer is a 2-D array of pixels (or per-pixel values) stored row-major.
// The zero value is an empty buffer.
type Buffer[T any] struct {
	data   []T
	width  int
	height int
}

// Resize grows or shrinks the buffer to width×height. Contents are
// preserved only when the size is unchanged; any actual resize discards
// the previous contents.
func (b *Buffer[T]) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if b.width == width && b.height == height {
		return
	}
	b.data = make([]T, width*height)
	b.width = width
	b.height = height
}

// Clear sets every element to v
func (b *Buffer[T]) Clear(v T) {
	for i := range b.data {
		b.data[i] = v
	}
}

// At returns the element at flat index i
func (b *Buffer[T]) At(i int) T {
	return b.data[i]
}

// Set stores v at flat index i
func (b *Buffer[T]) Set(i int, v T) {
	b.data[i] = v
}

// Index returns the flat index of pixel (x, y)
func (b *Buffer[T]) Index(x, y int) int {
	return y*b.width + x
}

// Data returns the underlying row-major storage
func (b *Buffer[T]) Data() []T {
	return b.data
}

// Len returns the number of elements
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Width returns the buffer width in pixels
func (b *Buffer[T]) Width() int {
	return b.width
}

// Height returns the buffer height in pixels
func (b *Buffer[T]) Height() int {
	return b.height
}
