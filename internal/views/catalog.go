package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"graphlearn/internal/client"
	"graphlearn/internal/domain"
	"graphlearn/internal/router"
	"graphlearn/internal/ui"
	pkgerrors "graphlearn/pkg/errors"

	"go.uber.org/zap"
)

// Element ids of the catalog template.
const (
	graphsListID   = "graphs-list"
	paginationID   = "pagination-controls"
	filterFormID   = "filter-form"
	sortSelectID   = "sort-by-select"
	searchInputID  = "search-input"
	descriptionMax = 120
)

// catalog is the state of one mounted /graphs view.
type catalog struct {
	deps Deps
	page *ui.Page
	// seq drops responses of superseded list requests.
	seq int
}

// Catalog initializes /graphs.
func (v *Views) Catalog(ctx context.Context, view router.ViewContext) {
	c := &catalog{deps: v.deps, page: view.Page}
	view.Page.On(filterFormID, ui.EventSubmit, func(ctx context.Context, _ ui.Event) {
		c.render(ctx, 1)
	})
	view.Page.On(sortSelectID, ui.EventChange, func(ctx context.Context, _ ui.Event) {
		c.render(ctx, 1)
	})
	c.render(ctx, 1)
}

// query builds the list query for page from the filter controls. Searches
// shorter than the minimum length are not sent.
func (c *catalog) query(page int) client.GraphQuery {
	sortBy := c.page.Value(sortSelectID)
	if sortBy != client.SortRatingDesc {
		sortBy = client.SortDateDesc
	}
	search := strings.TrimSpace(c.page.Value(searchInputID))
	if n := len([]rune(search)); n > 0 && n < c.deps.Pagination.MinSearchLength {
		c.deps.Logger.Debug("Search query too short", zap.Int("length", n))
		search = ""
	}
	size := c.deps.Pagination.GraphsPerPage
	return client.GraphQuery{Skip: (page - 1) * size, Limit: size, SortBy: sortBy, Search: search}
}

func (c *catalog) render(ctx context.Context, page int) {
	q := c.query(page)
	c.seq++
	seq := c.seq

	c.page.SetHTML(graphsListID, "<p>Loading...</p>")
	c.page.SetHTML(paginationID, "")

	var list *domain.GraphList
	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		l, err := c.deps.API.ListGraphs(ctx, q)
		list = l
		return err
	}, func(err error) {
		if seq != c.seq {
			return
		}
		if err != nil {
			c.deps.Logger.Warn("Failed to list graphs", zap.Error(err))
			c.page.SetHTML(graphsListID, `<div class="alert alert-danger">`+escape(ui.Presentf(err, "Failed to load graphs"))+`</div>`)
			return
		}

		c.page.SetValue(sortSelectID, q.SortBy)
		c.page.SetValue(searchInputID, q.Search)
		c.renderGraphs(page, q, list.Graphs)
		c.renderPagination(ctx, list.Total, page)
	})
}

func (c *catalog) renderGraphs(page int, q client.GraphQuery, graphs []domain.GraphSummary) {
	if len(graphs) == 0 {
		msg := "Nothing found. Try changing the filters."
		if page == 1 && q.Search == "" {
			msg = "No graphs have been created yet. Be the first!"
		}
		c.page.SetHTML(graphsListID, "<p>"+msg+"</p>")
		return
	}

	var b strings.Builder
	for _, g := range graphs {
		desc := truncate(g.DescriptionText(), descriptionMax)
		if desc == "" {
			desc = "No description."
		}
		fmt.Fprintf(&b, `<div class="col-md-6 mb-4"><div class="card border-primary h-100">`+
			`<div class="card-body d-flex flex-column">`+
			`<h5 class="card-title">%s</h5>`+
			`<h6 class="card-subtitle mb-2 text-muted">by %s</h6>`+
			`<p class="card-text flex-grow-1">%s</p>`+
			`<a id="graph-link-%s" href="/graphs/%s" class="card-link mt-auto">View graph</a>`+
			`</div>`+
			`<div class="card-footer text-muted d-flex justify-content-between">`+
			`<span>%s</span><span class="badge text-primary">▲ %d</span><span class="badge text-danger">▼ %d</span>`+
			`</div></div></div>`,
			escape(g.Name), escape(g.Owner.Username), escape(desc),
			escape(g.ID), escape(g.ID), g.CreatedAt.Format(dateLayout), g.Likes, g.Dislikes)
	}
	c.page.SetHTML(graphsListID, b.String())

	for _, g := range graphs {
		path := "/graphs/" + g.ID
		c.page.On("graph-link-"+g.ID, ui.EventClick, func(ctx context.Context, _ ui.Event) {
			c.deps.Navigator.Navigate(ctx, path)
		})
	}
}

// TotalPages returns the number of catalog pages for total graphs.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func (c *catalog) renderPagination(ctx context.Context, total, current int) {
	pages := TotalPages(total, c.deps.Pagination.GraphsPerPage)
	if pages <= 1 {
		c.page.SetHTML(paginationID, "")
		return
	}

	type link struct {
		id       string
		label    string
		target   int
		disabled bool
		active   bool
	}
	links := []link{{id: "page-prev", label: "«", target: current - 1, disabled: current == 1}}
	for i := 1; i <= pages; i++ {
		links = append(links, link{id: "page-" + strconv.Itoa(i), label: strconv.Itoa(i), target: i, active: i == current})
	}
	links = append(links, link{id: "page-next", label: "»", target: current + 1, disabled: current == pages})

	var b strings.Builder
	b.WriteString(`<ul class="pagination">`)
	for _, l := range links {
		class := "page-item"
		if l.disabled {
			class += " disabled"
		}
		if l.active {
			class += " active"
		}
		fmt.Fprintf(&b, `<li class="%s"><a id="%s" class="page-link" href="#" data-page="%d">%s</a></li>`,
			class, l.id, l.target, l.label)
	}
	b.WriteString(`</ul>`)
	c.page.SetHTML(paginationID, b.String())

	for _, l := range links {
		if l.disabled {
			continue
		}
		target := l.target
		c.page.On(l.id, ui.EventClick, func(ctx context.Context, _ ui.Event) {
			c.render(ctx, target)
		})
	}
}

// CreateGraph initializes /graphs/create.
func (v *Views) CreateGraph(ctx context.Context, view router.ViewContext) {
	page := view.Page
	busy := false
	page.On("create-graph-form", ui.EventSubmit, func(ctx context.Context, ev ui.Event) {
		if busy {
			return
		}
		in := domain.GraphCreate{
			Name:        strings.TrimSpace(ev.Form["graph-name"]),
			Description: strings.TrimSpace(ev.Form["graph-description"]),
		}
		if err := v.validate.Struct(in); err != nil {
			showError(page, errorMessageID, ui.Present(graphCreateError(in)))
			return
		}
		busy = true
		page.Hide(errorMessageID)

		var created *domain.GraphSummary
		v.deps.Loop.Go(ctx, func(ctx context.Context) error {
			g, err := v.deps.API.CreateGraph(ctx, in)
			created = g
			return err
		}, func(err error) {
			busy = false
			if err != nil {
				v.deps.Logger.Warn("Failed to create graph", zap.Error(err))
				showError(page, errorMessageID, ui.Present(err))
				return
			}
			v.deps.Navigator.Navigate(ctx, "/graphs/"+created.ID+"/edit")
		})
	})
}

func graphCreateError(in domain.GraphCreate) error {
	if in.Name == "" {
		return pkgerrors.NewValidationError("Graph name is required.")
	}
	if len([]rune(in.Name)) > 100 {
		return pkgerrors.NewValidationError("Graph name must be at most 100 characters.")
	}
	return pkgerrors.NewValidationError("Description must be at most 1000 characters.")
}
