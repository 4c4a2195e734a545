package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blogkit/internal/api/middleware"
	"github.com/inkpress/blogkit/internal/core/backend"
	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
)

type PostHandler struct {
	blog ports.BlogService
}

func NewPostHandler(blog ports.BlogService) *PostHandler {
	return &PostHandler{blog: blog}
}

// List handles GET /api/posts?page=&page_size=&tag=&q=
func (h *PostHandler) List(c echo.Context) error {
	q := domain.PublicListQuery{Page: 1, PageSize: backend.DefaultPublicPageSize}
	if err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("page_size", &q.PageSize).
		String("tag", &q.Tag).
		String("q", &q.Q).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	list, err := h.blog.ListPublic(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetBySlug handles GET /api/posts/slug/:slug. A valid bearer token lets
// the author read their own private posts.
func (h *PostHandler) GetBySlug(c echo.Context) error {
	post, err := h.blog.GetPublished(c.Request().Context(), pathParam(c, "slug"), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Tags(c echo.Context) error {
	tags, err := h.blog.ListTags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *PostHandler) Create(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var in domain.PostInput
	if err := bindValid(c, &in); err != nil {
		return err
	}

	created, err := h.blog.Create(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, created)
}

// Get handles GET /api/posts/:id for the post's author.
func (h *PostHandler) Get(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	post, err := h.blog.GetForAuthor(c.Request().Context(), userID, pathParam(c, "id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Update(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var in domain.PostInput
	if err := bindValid(c, &in); err != nil {
		return err
	}

	if err := h.blog.Update(c.Request().Context(), userID, pathParam(c, "id"), in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.Ack{OK: true})
}

func (h *PostHandler) Publish(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.blog.Publish(c.Request().Context(), userID, pathParam(c, "id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.Ack{OK: true})
}

func (h *PostHandler) Delete(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.blog.Delete(c.Request().Context(), userID, pathParam(c, "id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.Ack{OK: true})
}
