package graphcanvas

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"graphlearn/internal/canvas"
	"graphlearn/internal/domain"
	"graphlearn/internal/ui"
	pkgerrors "graphlearn/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Element ids of the graph editor template.
const (
	editorRootID          = "editor-root"
	editorNameID          = "graph-name"
	viewGraphLinkID       = "view-graph-link"
	addNodeBtnID          = "add-node-btn"
	addNodeModalID        = "add-node-modal"
	addNodeFormID         = "add-node-form"
	newNodeNameID         = "new-node-name"
	saveNodeBtnID         = "save-node-btn"
	addEdgeBtnID          = "add-edge-btn"
	instructionsID        = "editor-instructions"
	editNodeActionModalID = "edit-node-action-modal"
	editNodeActionTitleID = "edit-node-action-title"
	editNodeActionBodyID  = "edit-node-action-buttons"
	editContentBtnID      = "edit-node-content-btn"
	deleteNodeBtnID       = "delete-node-btn"
)

// Editor instructions shown while creating an edge.
const (
	InstructionsSource = "Step 1: click the SOURCE node."
	InstructionsTarget = "Step 2: click the TARGET node."
)

const (
	addEdgeLabel    = "Add edge"
	cancelEdgeLabel = "Cancel"
)

// Messages for actions dropped because an identical one is still pending.
const (
	DuplicateEdgeMessage = "This edge is already being created."
	DuplicateNodeMessage = "A node with this name is already being added."
)

// edgeKey identifies a pending create-edge request by its endpoints.
func edgeKey(source, target string) string {
	return "create-edge:" + source + ">" + target
}

func nodeKey(name string) string {
	return "create-node:" + name
}

// RenderEditor loads the graph into the editor. Nodes can be dragged, added
// and deleted; edges are created through the edge-creation mode.
func (c *Controller) RenderEditor(ctx context.Context) {
	c.load(ctx, editorNameID, editorRootID, EditStyles(), func() {
		c.page.SetText(editorNameID, "Editing: "+c.graph.Name)
		c.page.SetAttr(viewGraphLinkID, "href", "/graphs/"+c.graphID)
		c.page.On(viewGraphLinkID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
			c.deps.Navigator.Navigate(ctx, "/graphs/"+c.graphID)
		})

		c.page.On(addNodeBtnID, ui.EventClick, func(context.Context, ui.Event) {
			c.page.ResetForm(addNodeFormID)
			c.page.Show(addNodeModalID)
		})
		c.page.On(saveNodeBtnID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
			c.AddNode(ctx, c.page.Value(newNodeNameID))
		})
		c.page.On(addNodeFormID, ui.EventSubmit, func(ctx context.Context, ev ui.Event) {
			c.AddNode(ctx, ev.Form["name"])
		})
		c.page.On(addEdgeBtnID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
			c.Dispatch(ctx, ToggleEdgeMode{})
		})

		c.widget.OnTap(func(ev canvas.TapEvent) {
			switch ev.Kind {
			case canvas.TargetNode:
				c.Dispatch(ctx, TapNode{ID: ev.ID})
			case canvas.TargetEdge:
				c.Dispatch(ctx, TapEdge{ID: ev.ID})
			default:
				c.Dispatch(ctx, TapBackground{})
			}
		})
		c.widget.OnDragRelease(func(id string, p domain.Position) {
			c.Dispatch(ctx, DragRelease{ID: id, Position: p})
		})

		c.state = EditorState{Mode: ModeNormal}
		c.renderEditorState()
		c.widget.Fit()
	})
}

// State returns the editor state.
func (c *Controller) State() EditorState {
	return c.state
}

// Dispatch feeds an event to the editor state machine.
func (c *Controller) Dispatch(ctx context.Context, ev Event) {
	if c.widget == nil {
		return
	}

	switch e := ev.(type) {
	case ToggleEdgeMode:
		if c.state.Mode == ModeNormal {
			c.enterEdgeMode()
		} else {
			c.exitEdgeMode()
		}

	case Cancel, TapBackground:
		if c.state.Mode == ModeEdgeCreation {
			c.exitEdgeMode()
		}

	case TapNode:
		switch {
		case c.state.Mode == ModeNormal:
			c.openEditPanel(e.ID)
		case c.state.AwaitingSource():
			c.state.Source = e.ID
			c.widget.RemoveClass(e.ID, canvas.ClassEdgeMode)
			c.widget.AddClass(e.ID, canvas.ClassEdgeSource)
			c.renderEditorState()
		case e.ID == c.state.Source:
			c.exitEdgeMode()
		default:
			source := c.state.Source
			c.exitEdgeMode()
			c.createEdge(ctx, source, e.ID)
		}

	case TapEdge:
		if c.state.Mode == ModeNormal {
			c.DeleteEdge(ctx, e.ID)
		}

	case DragRelease:
		c.persistPosition(ctx, e.ID, e.Position)

	default:
		c.deps.Logger.Warn("Unknown editor event", zap.String("event", fmt.Sprintf("%T", ev)))
	}
}

func (c *Controller) enterEdgeMode() {
	c.state = EditorState{Mode: ModeEdgeCreation}
	for _, id := range c.widget.Nodes() {
		c.widget.AddClass(id, canvas.ClassEdgeMode)
	}
	c.renderEditorState()
}

func (c *Controller) exitEdgeMode() {
	for _, id := range c.widget.WithClass(canvas.ClassEdgeSource) {
		c.widget.RemoveClass(id, canvas.ClassEdgeSource)
	}
	for _, id := range c.widget.WithClass(canvas.ClassEdgeMode) {
		c.widget.RemoveClass(id, canvas.ClassEdgeMode)
	}
	c.state = EditorState{Mode: ModeNormal}
	c.renderEditorState()
}

func (c *Controller) renderEditorState() {
	switch {
	case c.state.AwaitingSource():
		c.page.SetText(addEdgeBtnID, cancelEdgeLabel)
		c.page.SetText(instructionsID, InstructionsSource)
		c.page.Show(instructionsID)
	case c.state.AwaitingTarget():
		c.page.SetText(addEdgeBtnID, cancelEdgeLabel)
		c.page.SetText(instructionsID, InstructionsTarget)
		c.page.Show(instructionsID)
	default:
		c.page.SetText(addEdgeBtnID, addEdgeLabel)
		c.page.SetText(instructionsID, "")
		c.page.Hide(instructionsID)
	}
}

func (c *Controller) createEdge(ctx context.Context, source, target string) {
	in := domain.EdgeCreate{SourceNodeID: source, TargetNodeID: target}
	if err := in.Validate(nil); err != nil {
		c.deps.Notifier.Alert(ui.Present(err))
		return
	}
	key := edgeKey(source, target)
	if !c.begin(key) {
		c.deps.Logger.Info("Edge request already pending",
			zap.String("source", source), zap.String("target", target))
		c.deps.Notifier.Alert(DuplicateEdgeMessage)
		return
	}

	var edge *domain.Edge
	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		e, err := c.deps.API.CreateEdge(ctx, c.graphID, in)
		edge = e
		return err
	}, func(err error) {
		c.end(key)
		c.record("create_edge", err)
		if err != nil {
			c.deps.Logger.Warn("Failed to create edge",
				zap.String("source", source), zap.String("target", target), zap.Error(err))
			c.deps.Notifier.Alert(ui.Presentf(err, "Failed to create edge"))
			return
		}
		if err := c.widget.Add(domain.EdgeElement(*edge)); err != nil {
			c.deps.Logger.Error("Created edge could not be drawn", zap.String("edge_id", edge.ID), zap.Error(err))
		}
	})
}

// AddNode creates a node named name at the centre of the current viewport.
// An empty name does nothing.
func (c *Controller) AddNode(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if c.widget == nil || name == "" {
		return
	}

	pos := ViewportCenter(c.widget)
	in := domain.NodeCreate{Name: name, PositionX: pos.X, PositionY: pos.Y}
	if err := c.validate.Struct(in); err != nil {
		c.deps.Notifier.Alert(ui.Present(pkgerrors.NewValidationError(validationMessage(err))))
		return
	}
	key := nodeKey(name)
	if !c.begin(key) {
		c.deps.Logger.Info("Node request already pending", zap.String("name", name))
		c.deps.Notifier.Alert(DuplicateNodeMessage)
		return
	}
	c.page.SetDisabled(saveNodeBtnID, true)

	var node *domain.Node
	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		n, err := c.deps.API.CreateNode(ctx, c.graphID, in)
		node = n
		return err
	}, func(err error) {
		c.end(key)
		c.record("create_node", err)
		c.page.SetDisabled(saveNodeBtnID, false)
		if err != nil {
			c.deps.Logger.Warn("Failed to create node", zap.String("graph_id", c.graphID), zap.Error(err))
			c.deps.Notifier.Alert(ui.Presentf(err, "Failed to add node"))
			return
		}

		if err := c.widget.Add(domain.NodeElement(node.ID, node.Name, pos)); err != nil {
			c.deps.Logger.Error("Created node could not be drawn", zap.String("node_id", node.ID), zap.Error(err))
			return
		}
		if c.state.Mode == ModeEdgeCreation {
			c.widget.AddClass(node.ID, canvas.ClassEdgeMode)
		}
		c.page.Hide(addNodeModalID)
		c.page.ResetForm(addNodeFormID)
	})
}

func (c *Controller) openEditPanel(nodeID string) {
	c.page.SetText(editNodeActionTitleID, fmt.Sprintf("Node: %q", c.nodeLabel(nodeID)))
	c.page.SetHTML(editNodeActionBodyID, fmt.Sprintf(
		`<a id="%s" class="btn btn-primary" href="/nodes/%s/edit?graph_id=%s">Edit content</a> `+
			`<button id="%s" class="btn btn-danger" data-node-id="%s">Delete node</button>`,
		editContentBtnID, escape(nodeID), escape(c.graphID), deleteNodeBtnID, escape(nodeID)))

	c.page.On(editContentBtnID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.page.Hide(editNodeActionModalID)
		c.deps.Navigator.Navigate(ctx, fmt.Sprintf("/nodes/%s/edit?graph_id=%s", nodeID, c.graphID))
	})
	c.page.On(deleteNodeBtnID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		c.page.Hide(editNodeActionModalID)
		c.DeleteNode(ctx, nodeID)
	})
	c.page.Show(editNodeActionModalID)
}

// DeleteNode asks for confirmation and deletes the node. The node leaves the
// canvas only after the server has deleted it.
func (c *Controller) DeleteNode(ctx context.Context, nodeID string) {
	if c.widget == nil || !c.widget.Has(nodeID) {
		return
	}
	prompt := fmt.Sprintf("Delete node %q? All of its edges will be deleted too.", c.nodeLabel(nodeID))
	if !c.deps.Notifier.Confirm(prompt) {
		return
	}
	key := "delete:" + nodeID
	if !c.begin(key) {
		return
	}

	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		return c.deps.API.DeleteNode(ctx, nodeID)
	}, func(err error) {
		c.end(key)
		c.record("delete_node", err)
		if err != nil {
			c.deps.Logger.Warn("Failed to delete node", zap.String("node_id", nodeID), zap.Error(err))
			c.deps.Notifier.Alert(ui.Presentf(err, "Failed to delete node"))
			return
		}
		c.widget.Remove(nodeID)
	})
}

// DeleteEdge asks for confirmation and deletes the edge. The edge leaves the
// canvas only after the server has deleted it.
func (c *Controller) DeleteEdge(ctx context.Context, edgeID string) {
	if c.widget == nil || !c.widget.Has(edgeID) {
		return
	}
	if !c.deps.Notifier.Confirm("Delete this edge?") {
		return
	}
	key := "delete:" + edgeID
	if !c.begin(key) {
		return
	}

	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		return c.deps.API.DeleteEdge(ctx, edgeID)
	}, func(err error) {
		c.end(key)
		c.record("delete_edge", err)
		if err != nil {
			c.deps.Logger.Warn("Failed to delete edge", zap.String("edge_id", edgeID), zap.Error(err))
			c.deps.Notifier.Alert(ui.Presentf(err, "Failed to delete edge"))
			return
		}
		c.widget.Remove(edgeID)
	})
}

// persistPosition saves a dragged node's position. The canvas already shows
// the new position and keeps it even if saving fails.
func (c *Controller) persistPosition(ctx context.Context, nodeID string, pos domain.Position) {
	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		_, err := c.deps.API.UpdateNode(ctx, nodeID, domain.PositionUpdate(pos))
		return err
	}, func(err error) {
		c.record("move_node", err)
		if err != nil {
			c.deps.Logger.Warn("Failed to save node position", zap.String("node_id", nodeID), zap.Error(err))
			c.deps.Notifier.Alert(ui.Presentf(err, "Failed to save node position"))
		}
	})
}

var fieldLabels = map[string]string{
	"Name": "Node name",
}

// validationMessage turns struct validation failures into one user-facing
// sentence per failed field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label, ok := fieldLabels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, label+" is required.")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters.", label, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters.", label, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s).", label, fe.Tag()))
		}
	}
	return strings.Join(msgs, " ")
}
