package views

import (
	"context"
	"fmt"
	"time"

	"graphlearn/internal/domain"
	"graphlearn/internal/router"
	"graphlearn/internal/ui"

	"go.uber.org/zap"
)

const catalogBackLabel = "← Back to catalog"

// NodeView initializes /nodes/{id}. The optional graph_id query parameter
// points the back link at the graph the node was opened from.
func (v *Views) NodeView(ctx context.Context, view router.ViewContext) {
	page := view.Page
	nodeID := view.Param("id")
	graphID := view.Query.Get("graph_id")

	var node *domain.Node
	v.deps.Loop.Go(ctx, func(ctx context.Context) error {
		n, err := v.deps.API.GetNode(ctx, nodeID)
		node = n
		return err
	}, func(err error) {
		if err != nil {
			v.deps.Logger.Warn("Failed to load node", zap.String("node_id", nodeID), zap.Error(err))
			page.SetHTML("node-view-root", `<p class="text-danger">`+escape(ui.Presentf(err, "Failed to load node"))+`</p>`)
			return
		}

		page.SetText("node-view-name-header", node.Name)
		back := "/graphs"
		if graphID != "" {
			back = "/graphs/" + graphID
		} else {
			page.SetText("back-to-graph-view-link", catalogBackLabel)
		}
		page.SetAttr("back-to-graph-view-link", "href", back)
		v.linkTo(page, "back-to-graph-view-link", back)

		if node.Content == "" {
			page.SetHTML("node-view-content", `<p class="text-muted">No content has been added for this node yet.</p>`)
			return
		}
		page.SetHTML("node-view-content", v.deps.Renderer.RenderSafe(node.Content))
	})
}

// NodeEditor initializes /nodes/{id}/edit: a text editor with a live preview
// and a save button.
func (v *Views) NodeEditor(ctx context.Context, view router.ViewContext) {
	page := view.Page
	nodeID := view.Param("id")
	graphID := view.Query.Get("graph_id")

	var node *domain.Node
	v.deps.Loop.Go(ctx, func(ctx context.Context) error {
		n, err := v.deps.API.GetNode(ctx, nodeID)
		node = n
		return err
	}, func(err error) {
		if err != nil {
			v.deps.Logger.Warn("Failed to load node for editing", zap.String("node_id", nodeID), zap.Error(err))
			page.SetHTML("node-editor-root", `<p class="text-danger">`+escape(ui.Presentf(err, "Failed to load the node editor"))+`</p>`)
			return
		}

		page.SetText("node-name-header", fmt.Sprintf("Editing node: %q", node.Name))
		back := "/graphs"
		if graphID != "" {
			back = "/graphs/" + graphID + "/edit"
		} else {
			page.SetText("back-to-graph-link", catalogBackLabel)
		}
		page.SetAttr("back-to-graph-link", "href", back)
		v.linkTo(page, "back-to-graph-link", back)

		page.SetValue("node-content-editor", node.Content)
		preview := func() {
			page.SetHTML("node-content-preview", v.deps.Renderer.RenderSafe(page.Value("node-content-editor")))
		}
		page.On("node-content-editor", ui.EventInput, func(context.Context, ui.Event) {
			preview()
		})
		preview()

		page.On("save-node-content-btn", ui.EventClick, func(ctx context.Context, _ ui.Event) {
			v.saveNodeContent(ctx, page, nodeID)
		})
	})
}

func (v *Views) saveNodeContent(ctx context.Context, page *ui.Page, nodeID string) {
	const status = "save-status"
	text := page.Value("node-content-editor")

	page.SetDisabled("save-node-content-btn", true)
	page.SetAttr(status, "class", "mt-2 text-info")
	page.SetText(status, "Saving...")

	v.deps.Loop.Go(ctx, func(ctx context.Context) error {
		_, err := v.deps.API.UpdateNode(ctx, nodeID, domain.ContentUpdate(text))
		return err
	}, func(err error) {
		v.deps.Metrics.RecordCanvasAction("save_content", err)
		if err != nil {
			v.deps.Logger.Warn("Failed to save node content", zap.String("node_id", nodeID), zap.Error(err))
			page.SetAttr(status, "class", "mt-2 text-danger")
			page.SetText(status, ui.Presentf(err, "Save failed"))
		} else {
			page.SetAttr(status, "class", "mt-2 text-success")
			page.SetText(status, "Saved successfully!")
		}

		delay := v.deps.StatusClearDelay
		v.deps.Loop.Go(ctx, func(ctx context.Context) error {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			return nil
		}, func(error) {
			page.SetDisabled("save-node-content-btn", false)
			page.Hide(status)
		})
	})
}
