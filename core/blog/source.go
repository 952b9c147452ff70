package blog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
)

var ErrSourceUnavailable = errors.New("no se pudieron cargar los posts del blog")

type (
	// Source lists every published post.
	Source interface {
		Posts(ctx context.Context) ([]Post, error)
	}

	// StaticSource serves a fixed set of posts and categories.
	StaticSource struct {
		posts      []Post
		categories []Category
	}

	// RemoteSource reads the posts from the institute's blog API.
	RemoteSource struct {
		baseURL string
		client  *rest.Client
	}
)

var (
	_ Source = (*StaticSource)(nil)
	_ Source = (*RemoteSource)(nil)
)

func NewStaticSource(posts []Post, categories []Category) *StaticSource {
	return &StaticSource{posts: posts, categories: categories}
}

func (src *StaticSource) Posts(context.Context) ([]Post, error) {
	posts := make([]Post, len(src.posts))
	copy(posts, src.posts)
	return posts, nil
}

func (src *StaticSource) Categories() []Category {
	return src.categories
}

// NewRemoteSource returns a source reading `{apiURL}/blog/posts/`.
func NewRemoteSource(apiURL string, timeout time.Duration) *RemoteSource {
	return &RemoteSource{
		baseURL: strings.TrimRight(apiURL, "/") + "/blog/posts/",
		client:  &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

func (src *RemoteSource) Posts(ctx context.Context) ([]Post, error) {
	req := rest.Request{
		Method:  rest.Get,
		BaseURL: src.baseURL,
		Headers: map[string]string{"Accept": "application/json"},
	}
	resp, err := src.client.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrap(ErrSourceUnavailable, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrSourceUnavailable, "HTTP %d", resp.StatusCode)
	}

	var posts []Post
	if err = json.Unmarshal([]byte(resp.Body), &posts); err != nil {
		return nil, errors.Wrap(ErrSourceUnavailable, err.Error())
	}
	return posts, nil
}
