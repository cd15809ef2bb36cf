// Package migrations holds the schema migrations. Each file registers its
// migrations from init(); importing the package for side effects is enough
// for the migrate commands to see them.
package migrations
