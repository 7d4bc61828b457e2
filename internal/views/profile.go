package views

import (
	"context"
	"fmt"
	"strings"

	"graphlearn/internal/domain"
	"graphlearn/internal/router"
	"graphlearn/internal/ui"

	"go.uber.org/zap"
)

// Profile initializes /profile.
func (v *Views) Profile(ctx context.Context, view router.ViewContext) {
	page := view.Page

	var profile *domain.Profile
	v.deps.Loop.Go(ctx, func(ctx context.Context) error {
		p, err := v.deps.API.Profile(ctx)
		profile = p
		return err
	}, func(err error) {
		if err != nil {
			v.deps.Logger.Warn("Failed to load profile", zap.Error(err))
			page.SetHTML("profile-loader", `<div class="alert alert-danger">`+escape(ui.Presentf(err, "Failed to load profile"))+`</div>`)
			return
		}

		page.SetText("profile-username", profile.Username)
		page.SetText("profile-likes", fmt.Sprintf("▲ %d", profile.TotalLikes))
		page.SetText("profile-dislikes", fmt.Sprintf("▼ %d", profile.TotalDislikes))

		v.renderGraphLinks(page, "owned-graphs-list", "owned-graph-", profile.OwnedGraphs,
			"You have not created any graphs yet.",
			func(g domain.GraphSummary) (string, string) {
				return "/graphs/" + g.ID + "/edit", "Created: " + g.CreatedAt.Format(dateLayout)
			})
		v.renderGraphLinks(page, "learning-graphs-list", "learning-graph-", profile.LearningGraphs,
			"You have not started learning any graphs yet.",
			func(g domain.GraphSummary) (string, string) {
				return "/graphs/" + g.ID, "Author: " + g.Owner.Username
			})

		page.Hide("profile-loader")
		page.Show("profile-content")
	})
}

func (v *Views) renderGraphLinks(page *ui.Page, listID, idPrefix string, graphs []domain.GraphSummary, empty string,
	describe func(domain.GraphSummary) (path, detail string)) {
	if len(graphs) == 0 {
		page.SetHTML(listID, `<p class="text-muted">`+empty+`</p>`)
		return
	}

	var b strings.Builder
	for _, g := range graphs {
		path, detail := describe(g)
		fmt.Fprintf(&b, `<a id="%s%s" href="%s" class="list-group-item list-group-item-action">`+
			`<strong>%s</strong><small class="d-block text-muted">%s</small></a>`,
			idPrefix, escape(g.ID), escape(path), escape(g.Name), escape(detail))
	}
	page.SetHTML(listID, b.String())

	for _, g := range graphs {
		path, _ := describe(g)
		v.linkTo(page, idPrefix+g.ID, path)
	}
}
