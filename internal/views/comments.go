package views

import (
	"context"
	"fmt"
	"strings"

	"graphlearn/internal/domain"
	"graphlearn/internal/ui"

	"go.uber.org/zap"
)

// Element ids of the comments section of the graph view.
const (
	commentsListID     = "comments-list"
	loadMoreContainer  = "load-more-comments-container"
	loadMoreBtnID      = "load-more-comments-btn"
	addCommentBoxID    = "add-comment-form-container"
	commentLoginPrompt = "comment-login-prompt"
	addCommentFormID   = "add-comment-form"
	commentContentID   = "comment-content"
)

// comments is the comment section of one mounted graph view.
type comments struct {
	deps    Deps
	graphID string
	page    *ui.Page
	loaded  int
	loading bool
	posting bool
}

func newComments(deps Deps, graphID string, page *ui.Page) *comments {
	return &comments{deps: deps, graphID: graphID, page: page}
}

func (c *comments) init(ctx context.Context) {
	if !c.page.Has(commentsListID) {
		c.deps.Logger.Warn("Comment section missing from template", zap.String("template", c.page.Template()))
		return
	}

	if c.deps.Session.IsAuthenticated(ctx) {
		c.page.Show(addCommentBoxID)
		c.page.Hide(commentLoginPrompt)
	} else {
		c.page.Hide(addCommentBoxID)
		c.page.Show(commentLoginPrompt)
	}

	c.page.On(loadMoreBtnID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.loadMore(ctx)
	})
	c.page.On(addCommentFormID, ui.EventSubmit, func(ctx context.Context, ev ui.Event) {
		c.add(ctx, ev.Form["content"])
	})
	c.loadMore(ctx)
}

func (c *comments) loadMore(ctx context.Context) {
	if c.loading {
		return
	}
	c.loading = true
	c.page.SetDisabled(loadMoreBtnID, true)
	c.page.SetText(loadMoreBtnID, "Loading...")

	limit := c.deps.Pagination.CommentsPerPage
	skip := c.loaded
	var batch []domain.Comment
	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		list, err := c.deps.API.ListComments(ctx, c.graphID, skip, limit)
		batch = list
		return err
	}, func(err error) {
		c.loading = false
		c.page.SetDisabled(loadMoreBtnID, false)
		c.page.SetText(loadMoreBtnID, "Load more")
		if err != nil {
			c.deps.Logger.Warn("Failed to load comments", zap.String("graph_id", c.graphID), zap.Error(err))
			c.page.SetHTML(commentsListID, `<p class="text-danger">Failed to load comments.</p>`)
			return
		}

		if skip == 0 {
			c.page.SetHTML(commentsListID, "")
		}
		var b strings.Builder
		for _, cm := range batch {
			b.WriteString(renderComment(cm))
		}
		c.page.AppendHTML(commentsListID, b.String())
		c.loaded += len(batch)

		if len(batch) < limit {
			c.page.Hide(loadMoreContainer)
		} else {
			c.page.Show(loadMoreContainer)
		}
	})
}

func (c *comments) add(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" || c.posting {
		return
	}
	c.posting = true

	var created *domain.Comment
	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		cm, err := c.deps.API.AddComment(ctx, c.graphID, text)
		created = cm
		return err
	}, func(err error) {
		c.posting = false
		if err != nil {
			c.deps.Logger.Warn("Failed to add comment", zap.String("graph_id", c.graphID), zap.Error(err))
			c.deps.Notifier.Alert(ui.Presentf(err, "Failed to add comment"))
			return
		}
		c.page.PrependHTML(commentsListID, renderComment(*created))
		c.loaded++
		c.page.SetValue(commentContentID, "")
	})
}

func renderComment(cm domain.Comment) string {
	return fmt.Sprintf(`<div id="comment-%s" class="card mb-3">`+
		`<div class="card-body"><p class="card-text">%s</p></div>`+
		`<div class="card-footer text-muted"><strong>%s</strong> <small> - %s</small></div>`+
		`</div>`,
		escape(cm.ID), escape(cm.Content), escape(cm.Owner.Username), cm.CreatedAt.Format("2006-01-02 15:04"))
}
