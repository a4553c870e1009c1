// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category represents a blog category. The schema allows arbitrary nesting
// through ParentID, but only one level is ever assembled into a tree.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Virtual fields populated by store methods.
	PostCount int          `json:"postCount"`
	Children  []Category   `json:"children"`
	Parent    *CategoryRef `json:"parent,omitempty"`
}

// CategoryRef is the slim projection of a category embedded in other views.
type CategoryRef struct {
	ID   *uuid.UUID `json:"id,omitempty"`
	Name string     `json:"name"`
	Slug string     `json:"slug"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryPatch holds a partial category update. Nil fields are left alone.
// ClearParent moves the category to the root level.
type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	ParentID    *uuid.UUID
	ClearParent bool
}

// BuildCategoryTree assembles root categories with their direct children.
// Roots and children are ordered by SortByName. Grandchildren are dropped
// and a
// child whose parent is missing from flat never shows up at the top level.
func BuildCategoryTree(flat []Category) []Category {
	children := make(map[uuid.UUID][]Category)
	var roots []Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	SortByName(roots)
	tree := make([]Category, 0, len(roots))
	for _, root := range roots {
		kids := children[root.ID]
		SortByName(kids)
		root.Children = make([]Category, 0, len(kids))
		for _, kid := range kids {
			kid.Children = nil
			root.Children = append(root.Children, kid)
		}
		tree = append(tree, root)
	}
	return tree
}

// SortByName orders categories by name ignoring case, falling back to the
// exact name on ties. CategoryStore lists in the same order.
func SortByName(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool { return NameLess(cats[i].Name, cats[j].Name) })
}

// NameLess reports whether a sorts before b in category order.
func NameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
