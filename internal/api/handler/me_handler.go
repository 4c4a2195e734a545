package handler

import (
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blogkit/internal/core/backend"
	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
)

// MeHandler serves the authenticated user's profile, post list and uploads.
type MeHandler struct {
	profile ports.ProfileService
}

func NewMeHandler(profile ports.ProfileService) *MeHandler {
	return &MeHandler{profile: profile}
}

func (h *MeHandler) Get(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	me, err := h.profile.Me(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, me)
}

// Update applies a partial profile patch.
func (h *MeHandler) Update(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var patch domain.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.profile.UpdateMe(c.Request().Context(), userID, patch); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.Ack{OK: true})
}

// Posts handles GET /api/me/posts?status=&visibility=&page=&page_size=
func (h *MeHandler) Posts(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	f := domain.MyPostsFilter{Page: 1, PageSize: backend.DefaultMyPostsPageSize}
	if err := echo.QueryParamsBinder(c).
		String("status", &f.Status).
		String("visibility", &f.Visibility).
		Int("page", &f.Page).
		Int("page_size", &f.PageSize).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	list, err := h.profile.MyPosts(c.Request().Context(), userID, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Upload handles POST /api/media. Every file part of the form is stored,
// in field name order.
func (h *MeHandler) Upload(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	files := []string{}
	for _, field := range fields {
		for _, fh := range form.File[field] {
			url, err := h.store(c, fh)
			if err != nil {
				return err
			}
			files = append(files, url)
		}
	}
	return c.JSON(http.StatusOK, domain.UploadResult{Files: files})
}

func (h *MeHandler) store(c echo.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	defer f.Close()
	return h.profile.Upload(c.Request().Context(), fh.Filename, f)
}
