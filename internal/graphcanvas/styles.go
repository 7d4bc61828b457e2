package graphcanvas

import "graphlearn/internal/canvas"

func baseStyles() []canvas.Style {
	return []canvas.Style{
		{Selector: "node", Properties: map[string]string{
			"background-color": "#0d6efd",
			"label":            "data(label)",
			"color":            "#212529",
			"text-valign":      "bottom",
			"text-margin-y":    "6px",
			"width":            "40px",
			"height":           "40px",
		}},
		{Selector: "edge", Properties: map[string]string{
			"width":              "2px",
			"line-color":         "#adb5bd",
			"target-arrow-color": "#adb5bd",
			"target-arrow-shape": "triangle",
			"curve-style":        "bezier",
		}},
	}
}

// ViewStyles are the styles of the read-only graph view.
func ViewStyles() []canvas.Style {
	return append(baseStyles(), canvas.Style{
		Selector: "node." + canvas.ClassLearned,
		Properties: map[string]string{
			"background-color": "#198754",
			"border-width":     "3px",
			"border-color":     "#0f5132",
		},
	})
}

// EditStyles are the styles of the graph editor.
func EditStyles() []canvas.Style {
	return append(baseStyles(),
		canvas.Style{
			Selector: "node." + canvas.ClassEdgeMode,
			Properties: map[string]string{
				"border-width": "2px",
				"border-style": "dashed",
				"border-color": "#fd7e14",
			},
		},
		canvas.Style{
			Selector: "node." + canvas.ClassEdgeSource,
			Properties: map[string]string{
				"background-color": "#fd7e14",
				"border-width":     "3px",
				"border-color":     "#dc3545",
			},
		},
	)
}
