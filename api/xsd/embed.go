// Package xsd holds the schema documents served by the fake OpenML service.
package xsd

import (
	"embed"
	"sort"
	"strings"
)

//go:embed *.xsd
var files embed.FS

const suffix = ".xsd"

// Get returns the schema document with the given name, such as openml.data.upload.
func Get(name string) ([]byte, bool) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, false
	}
	data, err := files.ReadFile(name + suffix)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Names lists the available schema names.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), suffix))
	}
	sort.Strings(names)
	return names
}
