// Package spatial maintains a quad-tree that classifies square regions of a
// cell grid by the dominant material family they contain, and answers ray
// queries against it.
//
// The tree never reads the grid after the initial Build. All later updates
// arrive through a ChangeLog, either in bounded batches (Flush) or lazily for
// the leaves a ray actually visits.
package spatial

// Class is the material family of a cell as seen by the tree. Nothing is the
// family of an empty cell and of every cell outside the grid.
type Class uint8

// Nothing is the family of empty space.
const Nothing Class = 0

// MaxClasses bounds the number of distinct families a tree can count.
const MaxClasses = 8

// Predicate decides whether a region of the given class stops a ray.
type Predicate func(Class) bool

// Any returns a predicate matching any of the listed classes.
func Any(classes ...Class) Predicate {
	var set [MaxClasses]bool
	for _, c := range classes {
		if int(c) < MaxClasses {
			set[c] = true
		}
	}
	return func(c Class) bool { return int(c) < MaxClasses && set[c] }
}

// Source is the read access Build needs to classify a grid from scratch.
type Source interface {
	Dims() (w, h int)
	ClassAt(x, y int) Class
}
