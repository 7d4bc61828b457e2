package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"graphlearn/internal/app"
	"graphlearn/internal/canvas"
	"graphlearn/internal/domain"
	"graphlearn/internal/graphcanvas"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var shellStart string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive headless client",
	Long: `Start an interactive session against the graph platform.

Commands:
  go <path>                 navigate
  back                      go back one entry
  reload                    render the current page again
  page                      print the current view
  click <id>                click an element
  submit <form> k=v...      fill and submit a form
  input <id> <text>         type into a control
  change <id> <value>       change a select or control
  tap node|edge <id>        tap a canvas element
  tap bg                    tap the canvas background
  drag <id> <x> <y>         drag a node and release it
  panel view|learn|unlearn|edit|delete
                            pick an action in the open node panel
  zoom in|out|fit           zoom the canvas
  edge                      toggle edge creation mode
  quit                      leave the shell`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVar(&shellStart, "start", "/", "Path to open first")
}

func runShell(cmd *cobra.Command, _ []string) error {
	container, cleanup, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	sh := NewShell(container.App, cmd.InOrStdin(), cmd.OutOrStdout())
	return sh.Run(cmd.Context(), shellStart)
}

// Shell drives an App from line-oriented commands.
type Shell struct {
	app *app.App
	in  *bufio.Scanner
	out io.Writer
}

// NewShell creates a shell over in and out.
func NewShell(a *app.App, in io.Reader, out io.Writer) *Shell {
	return &Shell{app: a, in: bufio.NewScanner(in), out: out}
}

var panelButtons = map[string]string{
	"view":    "view-node-content-btn",
	"learn":   "mark-learned-btn",
	"unlearn": "unmark-learned-btn",
	"edit":    "edit-node-content-btn",
	"delete":  "delete-node-btn",
}

// Run navigates to start and executes commands until quit or end of input.
func (s *Shell) Run(ctx context.Context, start string) error {
	if err := s.app.Start(ctx, start); err != nil {
		return err
	}
	s.printPage()

	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := s.Exec(ctx, line); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// Exec runs one command and waits for the client to settle.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	before := s.app.Router.State().Path

	var err error
	switch name {
	case "go":
		if len(args) != 1 {
			return fmt.Errorf("usage: go <path>")
		}
		s.app.Router.Navigate(ctx, args[0])
	case "back":
		if !s.app.Router.Back(ctx) {
			return fmt.Errorf("no previous page")
		}
	case "reload":
		if !s.app.Router.Reload(ctx) {
			return fmt.Errorf("nothing to reload")
		}
	case "page":
		s.printPage()
		return nil
	case "click":
		err = s.click(ctx, args)
	case "submit":
		err = s.submit(ctx, args)
	case "input", "change":
		err = s.control(ctx, name, args)
	case "tap":
		err = s.tap(args)
	case "drag":
		err = s.drag(args)
	case "panel":
		err = s.panel(ctx, args)
	case "zoom":
		err = s.zoom(args)
	case "edge":
		var ctrl *graphcanvas.Controller
		if ctrl, _, err = s.canvas(); err == nil {
			ctrl.Dispatch(ctx, graphcanvas.ToggleEdgeMode{})
		}
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	if err != nil {
		return err
	}

	if err := s.app.Settle(ctx); err != nil {
		return err
	}
	if name == "go" || name == "back" || name == "reload" || s.app.Router.State().Path != before {
		s.printPage()
	}
	return nil
}

func (s *Shell) click(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: click <id>")
	}
	if target := s.target(args[0]); target == nil || !target.Click(ctx, args[0]) {
		return fmt.Errorf("nothing to click at %q", args[0])
	}
	return nil
}

func (s *Shell) submit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: submit <form> k=v...")
	}
	fields := make(map[string]string, len(args)-1)
	for _, kv := range args[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("field %q is not k=v", kv)
		}
		fields[k] = v
	}
	page := s.app.Page()
	if page == nil || !page.Submit(ctx, args[0], fields) {
		return fmt.Errorf("form %q cannot be submitted", args[0])
	}
	return nil
}

func (s *Shell) control(ctx context.Context, event string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <id> <value>", event)
	}
	page := s.app.Page()
	if page == nil || !page.Has(args[0]) {
		return fmt.Errorf("no control %q", args[0])
	}
	value := strings.Join(args[1:], " ")
	if event == "input" {
		page.Input(ctx, args[0], value)
	} else {
		page.Change(ctx, args[0], value)
	}
	return nil
}

func (s *Shell) canvas() (*graphcanvas.Controller, *canvas.Scene, error) {
	switch s.app.Router.State().Route {
	case app.RouteGraphView, app.RouteGraphEdit:
	default:
		return nil, nil, fmt.Errorf("no graph on this page")
	}
	ctrl := s.app.Views.Graph()
	if ctrl == nil || ctrl.Widget() == nil {
		return nil, nil, fmt.Errorf("graph is not loaded")
	}
	scene, ok := ctrl.Widget().(*canvas.Scene)
	if !ok {
		return nil, nil, fmt.Errorf("canvas does not accept shell input")
	}
	return ctrl, scene, nil
}

func (s *Shell) tap(args []string) error {
	_, scene, err := s.canvas()
	if err != nil {
		return err
	}
	switch {
	case len(args) == 1 && args[0] == "bg":
		scene.Tap("")
	case len(args) == 2 && (args[0] == "node" || args[0] == "edge"):
		if !scene.Has(args[1]) {
			return fmt.Errorf("no %s %q", args[0], args[1])
		}
		scene.Tap(args[1])
	default:
		return fmt.Errorf("usage: tap node|edge <id> | tap bg")
	}
	return nil
}

func (s *Shell) drag(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: drag <id> <x> <y>")
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		return fmt.Errorf("coordinates must be numbers")
	}
	_, scene, err := s.canvas()
	if err != nil {
		return err
	}
	if !scene.Drag(args[0], domain.Position{X: x, Y: y}) {
		return fmt.Errorf("node %q cannot be dragged", args[0])
	}
	return nil
}

func (s *Shell) panel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: panel view|learn|unlearn|edit|delete")
	}
	id, ok := panelButtons[args[0]]
	if !ok {
		return fmt.Errorf("unknown panel action %q", args[0])
	}
	page := s.app.Page()
	if page == nil || !page.Click(ctx, id) {
		return fmt.Errorf("panel action %q is not available", args[0])
	}
	return nil
}

func (s *Shell) zoom(args []string) error {
	ctrl, _, err := s.canvas()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: zoom in|out|fit")
	}
	switch args[0] {
	case "in":
		ctrl.ZoomIn()
	case "out":
		ctrl.ZoomOut()
	case "fit":
		ctrl.Fit()
	default:
		return fmt.Errorf("usage: zoom in|out|fit")
	}
	fmt.Fprintf(s.out, "zoom %.2f\n", ctrl.Widget().Zoom())
	return nil
}

// target finds the page holding id: the view first, then the navigation bar.
func (s *Shell) target(id string) interface {
	Click(context.Context, string) bool
} {
	if page := s.app.Page(); page != nil && page.Has(id) {
		return page
	}
	if s.app.Nav != nil && s.app.Nav.Page().Has(id) {
		return s.app.Nav.Page()
	}
	return nil
}

func (s *Shell) printPage() {
	state := s.app.Router.State()
	fmt.Fprintf(s.out, "[%s] %s\n", state.Route, state.Path)
	if msg := s.app.Container.Error(); msg != "" {
		fmt.Fprintf(s.out, "error: %s\n", msg)
		return
	}
	fmt.Fprintln(s.out, s.app.Container.Render())

	if _, scene, err := s.canvas(); err == nil {
		nodes := scene.Nodes()
		sort.Strings(nodes)
		fmt.Fprintf(s.out, "canvas: %d nodes, %d edges, zoom %.2f\n", len(nodes), len(scene.Edges()), scene.Zoom())
		for _, id := range nodes {
			pos, _ := scene.Position(id)
			el, _ := scene.Element(id)
			fmt.Fprintf(s.out, "  %s %q (%.0f, %.0f)\n", id, el.Data.Label, pos.X, pos.Y)
		}
	}
	s.app.Logger().Debug("Printed page", zap.String("route", state.Route))
}
