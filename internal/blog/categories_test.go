package blog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

func TestCategories_TreeShape(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	b := e.mustCategory(t, "B", "b", nil)
	a := e.mustCategory(t, "A", "a", nil)
	e.mustCategory(t, "C", "c", &a.ID)

	tree, err := e.categories.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[0].ID != a.ID || tree[1].ID != b.ID {
		t.Errorf("roots out of order: %q, %q", tree[0].Name, tree[1].Name)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].Name != "C" {
		t.Errorf("A children: %+v", tree[0].Children)
	}
	if tree[1].Children == nil || len(tree[1].Children) != 0 {
		t.Errorf("B children: want empty slice, got %#v", tree[1].Children)
	}
	for _, root := range tree {
		if root.Name == "C" {
			t.Error("child category must not appear at the top level")
		}
	}
}

func TestCategories_ListRootOnly(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	parent := e.mustCategory(t, "Tech", "tech", nil)
	e.mustCategory(t, "Go", "go", &parent.ID)

	all, err := e.categories.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	roots, err := e.categories.List(ctx, true)
	if err != nil {
		t.Fatalf("List(rootOnly): %v", err)
	}
	if len(all) != 2 || len(roots) != 1 || roots[0].Slug != "tech" {
		t.Errorf("got all=%d roots=%+v", len(all), roots)
	}
}

func TestCategories_ListAndTreeShareOrder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.mustCategory(t, "banana", "banana", nil)
	e.mustCategory(t, "Cherry", "cherry", nil)
	e.mustCategory(t, "apple", "apple", nil)

	roots, err := e.categories.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	tree, err := e.categories.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	want := []string{"apple", "banana", "cherry"}
	for i, slug := range want {
		if roots[i].Slug != slug || tree[i].Slug != slug {
			t.Fatalf("position %d: list=%s tree=%s, want %s", i, roots[i].Slug, tree[i].Slug, slug)
		}
	}
}

func TestCategories_GetBySlug(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	parent := e.mustCategory(t, "Tech", "tech", nil)
	child := e.mustCategory(t, "Go", "go", &parent.ID)
	e.mustPost(t, "One", child.ID, true)

	got, err := e.categories.GetBySlug(ctx, "go")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.Parent == nil || got.Parent.Slug != "tech" || *got.Parent.ID != parent.ID {
		t.Errorf("parent ref: %+v", got.Parent)
	}
	if got.PostCount != 1 {
		t.Errorf("PostCount = %d, want 1", got.PostCount)
	}

	children, err := e.categories.Children(ctx, parent.ID)
	if err != nil || len(children) != 1 {
		t.Errorf("Children: %v, %+v", err, children)
	}

	_, err = e.categories.GetBySlug(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing slug: got %v, want ErrNotFound", err)
	}
}

func TestCategories_CreateValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	root := e.mustCategory(t, "Root", "root", nil)
	child := e.mustCategory(t, "Child", "child", &root.ID)
	missing := uuid.New()

	tests := []struct {
		name  string
		actor *Actor
		in    CategoryInput
		want  error
	}{
		{"anonymous", nil, CategoryInput{Name: "X", Slug: "x"}, ErrUnauthenticated},
		{"non-admin", e.alice, CategoryInput{Name: "X", Slug: "x"}, ErrForbidden},
		{"missing name", e.admin, CategoryInput{Slug: "x"}, ErrValidation},
		{"missing slug", e.admin, CategoryInput{Name: "X", Slug: "  "}, ErrValidation},
		{"punctuation slug", e.admin, CategoryInput{Name: "X", Slug: "!!!"}, ErrValidation},
		{"unknown parent", e.admin, CategoryInput{Name: "X", Slug: "x", ParentID: &missing}, ErrValidation},
		{"grandchild", e.admin, CategoryInput{Name: "X", Slug: "x", ParentID: &child.ID}, ErrValidation},
		{"duplicate slug", e.admin, CategoryInput{Name: "Other", Slug: "root"}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.categories.Create(ctx, tt.actor, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCategories_CreateNormalizesSlug(t *testing.T) {
	e := newTestEnv(t)
	c, err := e.categories.Create(context.Background(), e.admin, CategoryInput{
		Name: "  Web Dev ", Slug: "Web Dev!", Description: ptr("  "),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Slug != "web-dev" || c.Name != "Web Dev" {
		t.Errorf("got name %q slug %q", c.Name, c.Slug)
	}
	if c.Description != nil {
		t.Errorf("blank description should be stored as nil, got %q", *c.Description)
	}
}

func TestCategories_Update(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.mustCategory(t, "A", "a", nil)
	b := e.mustCategory(t, "B", "b", nil)
	e.mustCategory(t, "A1", "a1", &a.ID)

	got, err := e.categories.Update(ctx, e.admin, b.ID, models.CategoryPatch{Name: ptr("Bee"), ParentID: &a.ID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Bee" || got.ParentID == nil || *got.ParentID != a.ID {
		t.Errorf("unexpected update result: %+v", got)
	}

	if _, err := e.categories.Update(ctx, e.admin, a.ID, models.CategoryPatch{ParentID: &a.ID}); !errors.Is(err, ErrValidation) {
		t.Errorf("self parent: got %v", err)
	}

	c := e.mustCategory(t, "C", "c", nil)
	if _, err := e.categories.Update(ctx, e.admin, a.ID, models.CategoryPatch{ParentID: &c.ID}); !errors.Is(err, ErrValidation) {
		t.Errorf("parent with children moved under another: got %v", err)
	}

	got, err = e.categories.Update(ctx, e.admin, b.ID, models.CategoryPatch{ClearParent: true})
	if err != nil || got.ParentID != nil {
		t.Errorf("ClearParent: %v, %+v", err, got)
	}

	if _, err := e.categories.Update(ctx, e.admin, uuid.New(), models.CategoryPatch{Name: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
	if _, err := e.categories.Update(ctx, e.admin, b.ID, models.CategoryPatch{Slug: ptr("a")}); !errors.Is(err, ErrConflict) {
		t.Errorf("slug clash: got %v", err)
	}
}

func TestCategories_DeleteGuard(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	withPosts := e.mustCategory(t, "Busy", "busy", nil)
	e.mustPost(t, "Occupant", withPosts.ID, true)

	err := e.categories.Delete(ctx, e.admin, withPosts.ID)
	if !errors.Is(err, ErrHasDependents) {
		t.Fatalf("category with posts: got %v, want ErrHasDependents", err)
	}
	if !strings.Contains(Message(err), "1 posts") {
		t.Errorf("message should name the post count: %q", Message(err))
	}
	if got, _ := e.categories.GetBySlug(ctx, "busy"); got == nil || got.PostCount != 1 {
		t.Error("category and its posts must be untouched")
	}

	parent := e.mustCategory(t, "Parent", "parent", nil)
	e.mustCategory(t, "Kid", "kid", &parent.ID)
	err = e.categories.Delete(ctx, e.admin, parent.ID)
	if !errors.Is(err, ErrHasDependents) {
		t.Fatalf("category with children: got %v, want ErrHasDependents", err)
	}
	if !strings.Contains(Message(err), "subcategories") {
		t.Errorf("message should mention subcategories: %q", Message(err))
	}

	empty := e.mustCategory(t, "Empty", "empty", nil)
	if err := e.categories.Delete(ctx, e.admin, empty.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
	if err := e.categories.Delete(ctx, e.admin, empty.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
	if err := e.categories.Delete(ctx, e.bob, parent.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-admin delete: got %v, want ErrForbidden", err)
	}
}

func TestCategories_MutationInvalidatesTree(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.mustCategory(t, "First", "first", nil)
	if tree, _ := e.categories.Tree(ctx); len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	e.mustCategory(t, "Second", "second", nil)
	tree, err := e.categories.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 2 {
		t.Errorf("cached tree not invalidated: got %d roots", len(tree))
	}
}
