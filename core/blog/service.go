package blog

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPageSize is the number of posts in a page when the filter names none.
const DefaultPageSize = 3

var ErrNotFound = errors.New("post not found")

type (
	// Filter narrows Query. Zero values match everything.
	Filter struct {
		Category string `query:"category"`
		Tag      string `query:"tag"`
		Author   string `query:"author"`
		Featured *bool  `query:"featured"`
		Search   string `query:"search"`
		Page     int    `query:"page"`
		PageSize int    `query:"page_size"`
	}

	Page struct {
		Posts      []Post `json:"results"`
		Total      int    `json:"count"`
		Page       int    `json:"page"`
		PageSize   int    `json:"page_size"`
		TotalPages int    `json:"total_pages"`
	}

	categoryCatalog interface {
		Categories() []Category
	}

	Service struct {
		src      Source
		pageSize int
	}
)

func NewService(src Source, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{src: src, pageSize: pageSize}
}

// all returns every post, newest first.
func (svc *Service) all(ctx context.Context) ([]Post, error) {
	posts, err := svc.src.Posts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching posts")
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Published().After(posts[j].Published())
	})
	return posts, nil
}

// Query returns one page of the posts matching `f`, newest first.
func (svc *Service) Query(ctx context.Context, f Filter) (Page, error) {
	posts, err := svc.all(ctx)
	if err != nil {
		return Page{}, err
	}

	matched := make([]Post, 0, len(posts))
	for _, p := range posts {
		if f.matches(p) {
			matched = append(matched, p)
		}
	}

	size := f.PageSize
	if size <= 0 {
		size = svc.pageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	// compare by division; huge page values would overflow (page-1)*size
	start := len(matched)
	if page-1 <= len(matched)/size {
		start = min((page-1)*size, len(matched))
	}
	end := start + min(size, len(matched)-start)

	return Page{
		Posts:      matched[start:end],
		Total:      len(matched),
		Page:       page,
		PageSize:   size,
		TotalPages: int(math.Ceil(float64(len(matched)) / float64(size))),
	}, nil
}

func (f Filter) matches(p Post) bool {
	if f.Category != "" && !containsLower(p.Category, f.Category) {
		return false
	}
	if f.Tag != "" && !anyContainsLower(p.Tags, f.Tag) {
		return false
	}
	if f.Author != "" && !containsLower(p.Author.Name, f.Author) {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Search != "" {
		return containsLower(p.Title, f.Search) ||
			containsLower(p.Excerpt, f.Search) ||
			containsLower(p.Content, f.Search) ||
			containsLower(p.Author.Name, f.Search) ||
			containsLower(p.Category, f.Search) ||
			anyContainsLower(p.Tags, f.Search)
	}
	return true
}

func containsLower(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func anyContainsLower(ss []string, substr string) bool {
	for _, s := range ss {
		if containsLower(s, substr) {
			return true
		}
	}
	return false
}

func (svc *Service) BySlug(ctx context.Context, slug string) (Post, error) {
	posts, err := svc.src.Posts(ctx)
	if err != nil {
		return Post{}, errors.Wrap(err, "fetching posts")
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func (svc *Service) ByID(ctx context.Context, id int) (Post, error) {
	posts, err := svc.src.Posts(ctx)
	if err != nil {
		return Post{}, errors.Wrap(err, "fetching posts")
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func (svc *Service) Featured(ctx context.Context) ([]Post, error) {
	posts, err := svc.all(ctx)
	if err != nil {
		return nil, err
	}
	featured := []Post{}
	for _, p := range posts {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

// Recent returns the `n` newest posts.
func (svc *Service) Recent(ctx context.Context, n int) ([]Post, error) {
	posts, err := svc.all(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && n < len(posts) {
		posts = posts[:n]
	}
	return posts, nil
}

// Categories returns the distinct post categories in the order they first appear.
func (svc *Service) Categories(ctx context.Context) ([]string, error) {
	posts, err := svc.src.Posts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching posts")
	}
	var values []string
	for _, p := range posts {
		if p.Category != "" {
			values = append(values, p.Category)
		}
	}
	return unique(values), nil
}

// CategoryDetails describes each category in use. Categories the source does
// not describe are named after their id.
func (svc *Service) CategoryDetails(ctx context.Context) ([]Category, error) {
	names, err := svc.Categories(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]Category)
	if cat, ok := svc.src.(categoryCatalog); ok {
		for _, c := range cat.Categories() {
			known[c.ID] = c
		}
	}
	details := make([]Category, 0, len(names))
	for _, name := range names {
		c, ok := known[name]
		if !ok {
			c = Category{ID: name, Name: name}
		}
		details = append(details, c)
	}
	return details, nil
}

func (svc *Service) Tags(ctx context.Context) ([]string, error) {
	posts, err := svc.src.Posts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching posts")
	}
	var values []string
	for _, p := range posts {
		values = append(values, p.Tags...)
	}
	return unique(values), nil
}

// Authors returns the post authors, unique by name.
func (svc *Service) Authors(ctx context.Context) ([]Author, error) {
	posts, err := svc.src.Posts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching posts")
	}
	seen := make(map[string]bool)
	authors := []Author{}
	for _, p := range posts {
		if p.Author.Name == "" || seen[p.Author.Name] {
			continue
		}
		seen[p.Author.Name] = true
		authors = append(authors, p.Author)
	}
	return authors, nil
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	posts, err := svc.all(ctx)
	if err != nil {
		return Stats{}, err
	}
	categories, err := svc.Categories(ctx)
	if err != nil {
		return Stats{}, err
	}
	tags, err := svc.Tags(ctx)
	if err != nil {
		return Stats{}, err
	}
	authors, err := svc.Authors(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalPosts:      len(posts),
		TotalCategories: len(categories),
		TotalTags:       len(tags),
		TotalAuthors:    len(authors),
	}
	for _, p := range posts {
		if p.Featured {
			stats.FeaturedPostsCount++
		}
	}
	if len(posts) > 5 {
		posts = posts[:5]
	}
	stats.RecentPosts = posts
	return stats, nil
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := []string{}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
