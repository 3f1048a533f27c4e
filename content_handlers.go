package govdesk

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/govdesk/govdesk/backend"
	"github.com/govdesk/govdesk/content"
	"github.com/govdesk/govdesk/views"
)

func (a *App) handlePosts(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Content.Posts(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Content.Categories(ctx)
	if err != nil {
		return err
	}
	return Render(c, views.Posts(a.page(c), posts, cats))
}

func (a *App) handlePostAddForm(c echo.Context) error {
	cats, err := a.Content.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, views.PostForm(a.page(c), content.Post{}, cats, true))
}

func (a *App) handlePostAdd(c echo.Context) error {
	draft := postDraft(c)
	_, err := a.Content.CreatePost(c.Request().Context(), draft)
	if err != nil {
		if isDraftError(err) {
			return redirectErr(c, "/console/posts/add/", err.Error())
		}
		return err
	}
	return redirectMsg(c, "/console/posts/", "Post created.")
}

func (a *App) handlePostDetail(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Content.Post(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	cats, err := a.Content.Categories(ctx)
	if err != nil {
		return err
	}
	return Render(c, views.PostDetail(a.page(c), post, content.CategoryName(cats, post.CategoryID)))
}

func (a *App) handlePostEditForm(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Content.Post(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	cats, err := a.Content.Categories(ctx)
	if err != nil {
		return err
	}
	return Render(c, views.PostForm(a.page(c), post, cats, false))
}

func (a *App) handlePostEdit(c echo.Context) error {
	id := c.Param("id")
	_, err := a.Content.UpdatePost(c.Request().Context(), id, postDraft(c))
	if err != nil {
		if isDraftError(err) {
			return redirectErr(c, "/console/posts/"+id+"/edit/", err.Error())
		}
		if errors.Is(err, backend.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return redirectMsg(c, "/console/posts/", "Post saved.")
}

func (a *App) handlePostPublishToggle(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	post, err := a.Content.Post(ctx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	post, err = a.Content.SetPublished(ctx, id, !post.Published)
	if err != nil {
		return err
	}
	msg := "Post unpublished."
	if post.Published {
		msg = "Post published."
	}
	return redirectMsg(c, "/console/posts/", msg)
}

func (a *App) handlePostDelete(c echo.Context) error {
	if err := a.Content.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return redirectMsg(c, "/console/posts/", "Post deleted.")
}

func (a *App) handleCategories(c echo.Context) error {
	cats, err := a.Content.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, views.Categories(a.page(c), cats))
}

func (a *App) handleCategoryAdd(c echo.Context) error {
	_, err := a.Content.CreateCategory(c.Request().Context(), c.FormValue("name"))
	if err != nil {
		if errors.Is(err, content.ErrCategoryNameRequired) {
			return redirectErr(c, "/console/categories/", err.Error())
		}
		return err
	}
	return redirectMsg(c, "/console/categories/", "Category created.")
}

func postDraft(c echo.Context) content.Draft {
	return content.Draft{
		Title:      c.FormValue("title"),
		Content:    c.FormValue("content"),
		CategoryID: c.FormValue("category_id"),
		Published:  c.FormValue("published") != "",
	}
}

func isDraftError(err error) bool {
	return errors.Is(err, content.ErrTitleRequired) || errors.Is(err, content.ErrCategoryRequired)
}
