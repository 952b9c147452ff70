// Package library lists the books and study material offered for download.
package library

import (
	"github.com/ifcet/aula/core"
)

// AllCategories selects every book.
const AllCategories = "Todas"

type (
	Book struct {
		Name     string `json:"nombre,omitempty" yaml:"nombre"`
		Category string `json:"categoria,omitempty" yaml:"categoria"`
		Image    string `json:"imagen" yaml:"imagen"`
		URL      string `json:"url" yaml:"url"`
	}

	Catalog struct {
		books []Book
	}
)

func NewCatalog(books []Book) *Catalog {
	return &Catalog{books: books}
}

func (c *Catalog) Books() []Book {
	return c.books
}

// Categories returns AllCategories followed by each book category in the order it first appears.
func (c *Catalog) Categories() []string {
	cats := []string{AllCategories}
	seen := map[string]bool{AllCategories: true}
	for _, b := range c.books {
		if b.Category != "" && !seen[b.Category] {
			seen[b.Category] = true
			cats = append(cats, b.Category)
		}
	}
	return cats
}

// Filter returns the books in `category` whose name or category contains `term`.
// An empty category or AllCategories matches every book; so does a blank term.
func (c *Catalog) Filter(term, category string) []Book {
	term = core.CleanString(term)
	books := []Book{}
	for _, b := range c.books {
		if category != "" && category != AllCategories && b.Category != category {
			continue
		}
		if term != "" && !core.ContainsFold(b.Name, term) && !core.ContainsFold(b.Category, term) {
			continue
		}
		books = append(books, b)
	}
	return books
}
