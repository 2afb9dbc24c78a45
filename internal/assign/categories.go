package assign

import (
	"fmt"
	"sync"

	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/observe"
)

// Categories is the mutable, ordered collection of categories the
// presentation layer edits. Every successful mutation fires change
// notifications so downstream caches invalidate.
type Categories struct {
	mu        sync.Mutex
	list      []model.Category
	observers observe.List
}

func NewCategories() *Categories {
	return &Categories{}
}

// SubscribeToChanges registers fn to run after every mutation.
func (c *Categories) SubscribeToChanges(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers.Subscribe(fn)
}

// All returns a snapshot of the collection in order. Filter slices are
// copied so callers cannot alias internal state.
func (c *Categories) All() []model.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Category, len(c.list))
	for i, cat := range c.list {
		out[i] = cat.Clone()
	}
	return out
}

// Names lists the category names in order.
func (c *Categories) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.list))
	for i, cat := range c.list {
		names[i] = cat.Name
	}
	return names
}

// Add appends a new empty category and returns the name it was stored
// under; a name already in use gets the smallest " (k)" suffix that is free.
func (c *Categories) Add(name string) string {
	c.mu.Lock()
	stored := name
	for k := 1; c.index(stored) >= 0; k++ {
		stored = fmt.Sprintf("%s (%d)", name, k)
	}
	c.list = append(c.list, model.Category{Name: stored})
	c.mu.Unlock()

	c.observers.Notify()
	return stored
}

// Remove deletes the named category.
func (c *Categories) Remove(name string) error {
	c.mu.Lock()
	idx := c.index(name)
	if idx < 0 {
		c.mu.Unlock()
		return &model.NotFoundError{Kind: "category", Name: name}
	}
	c.list = append(c.list[:idx], c.list[idx+1:]...)
	c.mu.Unlock()

	c.observers.Notify()
	return nil
}

// Rename changes a category's name. Renaming onto an existing name is a
// validation error; renaming a category to its current name is a no-op.
func (c *Categories) Rename(oldName, newName string) error {
	c.mu.Lock()
	idx := c.index(oldName)
	if idx < 0 {
		c.mu.Unlock()
		return &model.NotFoundError{Kind: "category", Name: oldName}
	}
	if oldName == newName {
		c.mu.Unlock()
		return nil
	}
	if c.index(newName) >= 0 {
		c.mu.Unlock()
		return &model.ValidationError{Reason: fmt.Sprintf("category %q already exists", newName)}
	}
	c.list[idx].Name = newName
	c.mu.Unlock()

	c.observers.Notify()
	return nil
}

// SetBudget sets or clears (nil) the category's budget.
func (c *Categories) SetBudget(name string, budget *model.Budget) error {
	c.mu.Lock()
	idx := c.index(name)
	if idx < 0 {
		c.mu.Unlock()
		return &model.NotFoundError{Kind: "category", Name: name}
	}
	if budget != nil {
		b := *budget
		budget = &b
	}
	c.list[idx].Budget = budget
	c.mu.Unlock()

	c.observers.Notify()
	return nil
}

// PutFilter adds the filter to the named category, replacing any existing
// filter with the same id.
func (c *Categories) PutFilter(name string, f model.Filter) error {
	c.mu.Lock()
	idx := c.index(name)
	if idx < 0 {
		c.mu.Unlock()
		return &model.NotFoundError{Kind: "category", Name: name}
	}
	c.list[idx].PutFilter(f)
	c.mu.Unlock()

	c.observers.Notify()
	return nil
}

// RemoveFilter deletes the filter with the given id from the named category.
func (c *Categories) RemoveFilter(name string, filterID int) error {
	c.mu.Lock()
	idx := c.index(name)
	if idx < 0 {
		c.mu.Unlock()
		return &model.NotFoundError{Kind: "category", Name: name}
	}
	if !c.list[idx].RemoveFilter(filterID) {
		c.mu.Unlock()
		return &model.NotFoundError{Kind: "filter", Name: fmt.Sprintf("%s/%d", name, filterID)}
	}
	c.mu.Unlock()

	c.observers.Notify()
	return nil
}

// Replace swaps the whole collection, used when loading persisted settings.
func (c *Categories) Replace(categories []model.Category) {
	c.mu.Lock()
	c.list = make([]model.Category, len(categories))
	for i, cat := range categories {
		c.list[i] = cat.Clone()
	}
	c.mu.Unlock()

	c.observers.Notify()
}

func (c *Categories) index(name string) int {
	for i, cat := range c.list {
		if cat.Name == name {
			return i
		}
	}
	return -1
}
