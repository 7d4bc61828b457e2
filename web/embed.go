// Package web embeds the view templates served to, and loaded by, the client.
package web

import "embed"

// Pages holds pages/*.html, addressed as "pages/<name>.html".
//
//go:embed pages/*.html
var Pages embed.FS

// Partials holds markup mounted outside the view container.
//
//go:embed partials/*.html
var Partials embed.FS

// NavMarkup returns the navigation bar markup.
func NavMarkup() (string, error) {
	data, err := Partials.ReadFile("partials/nav.html")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
