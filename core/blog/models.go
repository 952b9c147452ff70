package blog

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/content"
)

type (
	Author struct {
		Name   string `json:"name" yaml:"name"`
		Role   string `json:"role,omitempty" yaml:"role"`
		Avatar string `json:"avatar,omitempty" yaml:"avatar"`
	}

	Post struct {
		ID          int      `json:"id" yaml:"id"`
		Slug        string   `json:"slug" yaml:"slug"`
		Title       string   `json:"title" yaml:"title"`
		Excerpt     string   `json:"excerpt" yaml:"excerpt"`
		Content     string   `json:"content" yaml:"content"`
		Category    string   `json:"category" yaml:"category"`
		Author      Author   `json:"author" yaml:"author"`
		PublishedAt string   `json:"published_at" yaml:"publishedAt"`
		ReadTime    string   `json:"read_time,omitempty" yaml:"readTime"`
		Image       string   `json:"image,omitempty" yaml:"image"`
		Featured    bool     `json:"featured" yaml:"featured"`
		Tags        []string `json:"tags" yaml:"tags"`
	}

	// PostDetail is a post along with its content split into renderable fragments.
	PostDetail struct {
		Post
		Fragments []content.Fragment `json:"fragments"`
	}

	Category struct {
		ID          string `json:"id" yaml:"id"`
		Name        string `json:"name" yaml:"name"`
		Description string `json:"description,omitempty" yaml:"description"`
		Color       string `json:"color,omitempty" yaml:"color"`
	}

	Stats struct {
		TotalPosts         int    `json:"total_posts"`
		TotalCategories    int    `json:"total_categories"`
		TotalTags          int    `json:"total_tags"`
		TotalAuthors       int    `json:"total_authors"`
		FeaturedPostsCount int    `json:"featured_posts_count"`
		RecentPosts        []Post `json:"recent_posts"`
	}
)

// UnmarshalJSON accepts the author either as a bare name or as an object.
func (a *Author) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*a = Author{Name: name}
		return nil
	}
	type plain Author
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.Wrap(err, "decoding author")
	}
	*a = Author(p)
	return nil
}

// UnmarshalYAML accepts the author either as a bare name or as a mapping.
func (a *Author) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*a = Author{Name: value.Value}
		return nil
	}
	type plain Author
	var p plain
	if err := value.Decode(&p); err != nil {
		return errors.Wrap(err, "decoding author")
	}
	*a = Author(p)
	return nil
}

// UnmarshalJSON reads both the API shape (snake case, author object) and the
// site's static data shape (camel case, author name plus authorRole).
func (p *Post) UnmarshalJSON(b []byte) error {
	type plain Post
	aux := struct {
		*plain
		AuthorRole  string `json:"authorRole"`
		PublishedAt string `json:"publishedAt"`
		ReadTime    string `json:"readTime"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return errors.Wrap(err, "decoding post")
	}
	if p.Author.Role == "" {
		p.Author.Role = aux.AuthorRole
	}
	if p.PublishedAt == "" {
		p.PublishedAt = aux.PublishedAt
	}
	if p.ReadTime == "" {
		p.ReadTime = aux.ReadTime
	}
	return nil
}

// UnmarshalJSON decodes the post fields and then the fragments, which the
// promoted Post.UnmarshalJSON would otherwise drop.
func (d *PostDetail) UnmarshalJSON(b []byte) error {
	if err := d.Post.UnmarshalJSON(b); err != nil {
		return err
	}
	var aux struct {
		Fragments []content.Fragment `json:"fragments"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return errors.Wrap(err, "decoding post fragments")
	}
	d.Fragments = aux.Fragments
	return nil
}

// Published returns the publication time; the zero time when it cannot be read.
func (p Post) Published() time.Time {
	t, _ := core.ParseTime(p.PublishedAt)
	return t
}

// Detail renders the post content.
func (p Post) Detail() PostDetail {
	return PostDetail{Post: p, Fragments: content.Render(p.Content)}
}
