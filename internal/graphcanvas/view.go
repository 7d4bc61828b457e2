package graphcanvas

import (
	"context"
	"fmt"
	"html"
	"strconv"

	"graphlearn/internal/canvas"
	"graphlearn/internal/domain"
	"graphlearn/internal/ui"

	"go.uber.org/zap"
)

// Element ids of the graph view template.
const (
	infoContainerID   = "graph-info-container"
	voteUpID          = "vote-up-btn"
	voteDownID        = "vote-down-btn"
	likeCountID       = "like-count"
	dislikeCountID    = "dislike-count"
	editGraphLinkID   = "edit-graph-link"
	nodeActionModalID = "node-action-modal"
	nodeActionTitleID = "node-action-title"
	nodeActionBodyID  = "node-action-buttons"
	viewContentBtnID  = "view-node-content-btn"
	markLearnedBtnID  = "mark-learned-btn"
	unmarkLearnedID   = "unmark-learned-btn"
)

const voteKey = "vote"

func escape(s string) string {
	return html.EscapeString(s)
}

// RenderView loads the graph and renders it read-only with the rating
// controls and the viewer's learning progress.
func (c *Controller) RenderView(ctx context.Context) {
	c.load(ctx, infoContainerID, infoContainerID, ViewStyles(), func() {
		c.renderInfo()
		c.bindVoteControls()

		for _, id := range c.learned.IDs() {
			if c.widget.Has(id) {
				c.widget.AddClass(id, canvas.ClassLearned)
			}
		}
		c.widget.Ungrab()
		c.widget.OnTap(func(ev canvas.TapEvent) {
			if ev.Kind == canvas.TargetNode {
				c.openViewPanel(ev.ID)
			}
		})
		c.widget.Fit()
	})
}

func (c *Controller) renderInfo() {
	g := c.graph
	markup := `<h1 id="graph-name">` + escape(g.Name) + `</h1>`
	if desc := g.DescriptionText(); desc != "" {
		markup += `<p id="graph-description" class="lead">` + escape(desc) + `</p>`
	}
	markup += fmt.Sprintf(`<p id="graph-meta" class="text-muted">Author: %s | Created: %s</p>`,
		escape(g.Owner.Username), g.CreatedAt.Format("2006-01-02"))
	if c.isOwner {
		markup += fmt.Sprintf(`<a id="%s" class="btn btn-secondary" href="/graphs/%s/edit">Edit graph</a>`,
			editGraphLinkID, escape(g.ID))
	}
	markup += fmt.Sprintf(`<div id="rating-controls">`+
		`<button id="%s" class="btn btn-outline-success" data-vote="1">▲ <span id="%s">0</span></button> `+
		`<button id="%s" class="btn btn-outline-danger" data-vote="-1">▼ <span id="%s">0</span></button>`+
		`</div>`, voteUpID, likeCountID, voteDownID, dislikeCountID)
	c.page.SetHTML(infoContainerID, markup)
	c.renderVotes()
}

func (c *Controller) bindVoteControls() {
	c.page.On(voteUpID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.Vote(ctx, domain.VoteUp)
	})
	c.page.On(voteDownID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.Vote(ctx, domain.VoteDown)
	})
	if c.isOwner {
		c.page.On(editGraphLinkID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
			c.deps.Navigator.Navigate(ctx, "/graphs/"+c.graphID+"/edit")
		})
	}
}

// canVote reports whether the viewer may rate this graph.
func (c *Controller) canVote() bool {
	return c.graph != nil && c.hasSession && !c.isOwner
}

func (c *Controller) renderVotes() {
	c.page.SetText(likeCountID, strconv.Itoa(c.votes.Likes))
	c.page.SetText(dislikeCountID, strconv.Itoa(c.votes.Dislikes))

	for _, b := range []struct {
		id   string
		vote domain.Vote
	}{{voteUpID, domain.VoteUp}, {voteDownID, domain.VoteDown}} {
		if c.votes.MyVote == b.vote {
			c.page.AddClass(b.id, "active")
		} else {
			c.page.RemoveClass(b.id, "active")
		}
		c.page.SetDisabled(b.id, !c.canVote() || c.Busy(voteKey))
	}
}

// Votes returns the vote triple as currently displayed.
func (c *Controller) Votes() domain.VoteState {
	return c.votes
}

// Vote applies a click on a vote button. The counters change immediately;
// if the server rejects the vote they return to their previous values and
// the user is told. Only one vote request is in flight at a time.
func (c *Controller) Vote(ctx context.Context, value domain.Vote) {
	if !c.canVote() || !c.begin(voteKey) {
		return
	}

	prior := c.votes
	next, err := prior.Apply(value)
	if err != nil {
		c.end(voteKey)
		c.deps.Notifier.Alert(ui.Present(err))
		return
	}
	c.votes = next
	c.renderVotes()

	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		return c.deps.API.RateGraph(ctx, c.graphID, value)
	}, func(err error) {
		c.end(voteKey)
		c.record("vote", err)
		if err != nil {
			c.deps.Logger.Warn("Vote rejected", zap.String("graph_id", c.graphID), zap.Error(err))
			c.votes = prior
			c.renderVotes()
			c.deps.Notifier.Alert(ui.Presentf(err, "Failed to rate graph"))
			return
		}
		c.renderVotes()
	})
}

// Learned returns the ids of the nodes marked as learned.
func (c *Controller) Learned() []string {
	return c.learned.IDs()
}

func (c *Controller) openViewPanel(nodeID string) {
	c.page.SetText(nodeActionTitleID, fmt.Sprintf("Node: %q", c.nodeLabel(nodeID)))

	markup := fmt.Sprintf(`<a id="%s" class="btn btn-primary" href="/nodes/%s?graph_id=%s">View content</a>`,
		viewContentBtnID, escape(nodeID), escape(c.graphID))
	if c.hasSession {
		if c.learned.Has(nodeID) {
			markup += fmt.Sprintf(` <button id="%s" class="btn btn-warning" data-node-id="%s">Unmark as learned</button>`,
				unmarkLearnedID, escape(nodeID))
		} else {
			markup += fmt.Sprintf(` <button id="%s" class="btn btn-success" data-node-id="%s">Mark as learned</button>`,
				markLearnedBtnID, escape(nodeID))
		}
	}
	c.page.SetHTML(nodeActionBodyID, markup)

	c.page.On(viewContentBtnID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.page.Hide(nodeActionModalID)
		c.deps.Navigator.Navigate(ctx, fmt.Sprintf("/nodes/%s?graph_id=%s", nodeID, c.graphID))
	})
	c.page.On(markLearnedBtnID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.ToggleLearned(ctx, nodeID)
	})
	c.page.On(unmarkLearnedID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.ToggleLearned(ctx, nodeID)
	})
	c.page.Show(nodeActionModalID)
}

// ToggleLearned marks the node as learned, or unmarks it if it already is.
// Local state changes only once the server has accepted the change.
func (c *Controller) ToggleLearned(ctx context.Context, nodeID string) {
	if c.graph == nil || !c.hasSession {
		return
	}
	key := "learned:" + nodeID
	if !c.begin(key) {
		return
	}

	unmark := c.learned.Has(nodeID)
	action, button := "mark_learned", markLearnedBtnID
	call := c.deps.API.MarkLearned
	if unmark {
		action, button = "unmark_learned", unmarkLearnedID
		call = c.deps.API.UnmarkLearned
	}
	c.page.SetDisabled(button, true)

	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		return call(ctx, nodeID)
	}, func(err error) {
		c.end(key)
		c.record(action, err)
		c.page.SetDisabled(button, false)
		if err != nil {
			c.deps.Logger.Warn("Failed to update learning progress",
				zap.String("node_id", nodeID), zap.String("action", action), zap.Error(err))
			if unmark {
				c.deps.Notifier.Alert(ui.Presentf(err, "Failed to unmark the node"))
			} else {
				c.deps.Notifier.Alert(ui.Presentf(err, "Failed to mark the node as learned"))
			}
			return
		}

		if unmark {
			c.learned.Remove(nodeID)
			c.widget.RemoveClass(nodeID, canvas.ClassLearned)
		} else {
			c.learned.Add(nodeID)
			c.widget.AddClass(nodeID, canvas.ClassLearned)
		}
		c.page.Hide(nodeActionModalID)
	})
}
