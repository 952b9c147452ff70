package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/blog"
	"github.com/ifcet/aula/core/content"
)

const recentPostsDefault = 3

type blogApi struct {
	svc *blog.Service
}

func registerBlogAPI(g *echo.Group, svc *blog.Service) {
	api := blogApi{svc: svc}

	bg := g.Group("/blog")
	bg.GET("/posts", api.queryPosts)
	bg.GET("/posts/featured", api.featured)
	bg.GET("/posts/recent", api.recent)
	bg.GET("/posts/:slug", api.retrievePost)
	bg.GET("/categories", api.categories)
	bg.GET("/tags", api.tags)
	bg.GET("/authors", api.authors)
	bg.GET("/stats", api.stats)
	bg.POST("/render", api.render)
}

// bindFilter reads the post filter from the query string.
func bindFilter(ctx echo.Context) (blog.Filter, error) {
	f := blog.Filter{
		Category: ctx.QueryParam("category"),
		Tag:      ctx.QueryParam("tag"),
		Author:   ctx.QueryParam("author"),
		Search:   ctx.QueryParam("search"),
	}

	if raw := ctx.QueryParam("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return f, core.NewValidationError(nil, core.FieldError{Field: "featured", Error: "valor booleano inválido"})
		}
		f.Featured = &featured
	}
	for param, dst := range map[string]*int{"page": &f.Page, "page_size": &f.PageSize} {
		raw := ctx.QueryParam(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, core.NewValidationError(nil, core.FieldError{Field: param, Error: "debe ser un entero positivo"})
		}
		*dst = n
	}
	return f, nil
}

// Handlers

func (api *blogApi) queryPosts(ctx echo.Context) error {
	f, err := bindFilter(ctx)
	if err != nil {
		return err
	}
	page, err := api.svc.Query(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *blogApi) featured(ctx echo.Context) error {
	posts, err := api.svc.Featured(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying featured posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *blogApi) recent(ctx echo.Context) error {
	n := recentPostsDefault
	if raw := ctx.QueryParam("n"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil || n < 1 {
			return core.NewValidationError(nil, core.FieldError{Field: "n", Error: "debe ser un entero positivo"})
		}
	}
	posts, err := api.svc.Recent(ctx.Request().Context(), n)
	if err != nil {
		return errors.Wrap(err, "querying recent posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *blogApi) retrievePost(ctx echo.Context) error {
	post, err := api.svc.BySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "getting post")
	}
	return ctx.JSON(http.StatusOK, post.Detail())
}

func (api *blogApi) categories(ctx echo.Context) error {
	categories, err := api.svc.CategoryDetails(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing categories")
	}
	return ctx.JSON(http.StatusOK, categories)
}

func (api *blogApi) tags(ctx echo.Context) error {
	tags, err := api.svc.Tags(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing tags")
	}
	return ctx.JSON(http.StatusOK, tags)
}

func (api *blogApi) authors(ctx echo.Context) error {
	authors, err := api.svc.Authors(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing authors")
	}
	return ctx.JSON(http.StatusOK, authors)
}

func (api *blogApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing blog stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *blogApi) render(ctx echo.Context) error {
	var data RenderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenderRequest")
	}
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	frags := content.Render(data.Content)
	html, err := content.WriteHTML(frags)
	if err != nil {
		return errors.Wrap(err, "rendering content")
	}
	return ctx.JSON(http.StatusOK, RenderResponse{Fragments: frags, HTML: string(html)})
}
