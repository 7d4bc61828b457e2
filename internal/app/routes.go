// Package app assembles the client: the route table, the private paths, the
// view initializers and the navigation bar.
package app

import (
	"graphlearn/internal/router"
	"graphlearn/internal/views"
)

// Route names.
const (
	RouteHome        = "home"
	RouteLogin       = "login"
	RouteRegister    = "register"
	RouteGraphs      = "graphs"
	RouteGraphCreate = "graph_create"
	RouteGraphEdit   = "graph_edit"
	RouteGraphView   = "graph_view"
	RouteNodeEdit    = "node_edit"
	RouteNodeView    = "node_view"
	RouteProfile     = "profile"
	RouteNotFound    = "not_found"
)

const idPattern = "{id:[0-9a-fA-F-]+}"

// NotFound is the route used when nothing else matches.
var NotFound = router.Route{Name: RouteNotFound, Template: "/pages/not_found.html"}

// Routes lists the routes in match order. /graphs/create precedes the graph
// view so it is never read as a graph id.
func Routes() []router.Route {
	return []router.Route{
		{Name: RouteHome, Pattern: "/", Template: "/pages/home.html"},
		{Name: RouteLogin, Pattern: "/login", Template: "/pages/login.html"},
		{Name: RouteRegister, Pattern: "/register", Template: "/pages/register.html"},
		{Name: RouteGraphs, Pattern: "/graphs", Template: "/pages/graphs.html"},
		{Name: RouteGraphCreate, Pattern: "/graphs/create", Template: "/pages/create_graph.html"},
		{Name: RouteGraphEdit, Pattern: "/graphs/" + idPattern + "/edit", Template: "/pages/edit_graph.html"},
		{Name: RouteGraphView, Pattern: "/graphs/" + idPattern, Template: "/pages/view_graph.html"},
		{Name: RouteNodeEdit, Pattern: "/nodes/" + idPattern + "/edit", Template: "/pages/edit_node.html"},
		{Name: RouteNodeView, Pattern: "/nodes/" + idPattern, Template: "/pages/view_node.html"},
		{Name: RouteProfile, Pattern: "/profile", Template: "/pages/profile.html"},
	}
}

// RouteTable compiles Routes.
func RouteTable() (*router.RouteTable, error) {
	return router.NewRouteTable(NotFound, Routes()...)
}

// PrivateRules lists the paths that need a session.
func PrivateRules() []router.PrivateRule {
	return []router.PrivateRule{
		router.Exact("/graphs/create"),
		router.Exact("/profile"),
		router.MustPattern("/graphs/{rest:.*}/edit"),
		router.MustPattern("/nodes/{rest:.*}/edit"),
	}
}

// Register binds every dynamic route to its initializer. Home and not-found
// are static.
func Register(d *router.Dispatcher, v *views.Views) {
	d.Register(RouteLogin, v.Login)
	d.Register(RouteRegister, v.Register)
	d.Register(RouteGraphs, v.Catalog)
	d.Register(RouteGraphCreate, v.CreateGraph)
	d.Register(RouteGraphEdit, v.GraphEditor)
	d.Register(RouteGraphView, v.GraphView)
	d.Register(RouteNodeEdit, v.NodeEditor)
	d.Register(RouteNodeView, v.NodeView)
	d.Register(RouteProfile, v.Profile)
}
