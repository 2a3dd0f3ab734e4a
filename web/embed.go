package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates/*.tmpl static/*
var Assets embed.FS

// StaticFS returns a file system for serving /static assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(Assets, "static")
	if err != nil {
		return http.FS(embed.FS{})
	}
	return http.FS(sub)
}

// Templates parses and returns the embedded templates.
func Templates() *template.Template {
	return template.Must(template.New("").
		Funcs(template.FuncMap{"lower": strings.ToLower}).
		ParseFS(Assets, "templates/*.tmpl"))
}

// Splash is the ASCII logo shown before every puzzle, one string with
// trailing blank lines removed.
func Splash() string {
	b, err := Assets.ReadFile("static/splash.txt")
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(b), "\n")
}
