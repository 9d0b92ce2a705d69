package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Language describes how code templates are written for a training language.
type Language struct {
	Name          string
	CommentPrefix string
	Extension     string
}

// CodeFileName is the name of the code template artifact.
func (l Language) CodeFileName() string {
	return "kata" + l.Extension
}

var languages = map[string]Language{
	"javascript":   {Name: "javascript", CommentPrefix: "//", Extension: ".js"},
	"coffeescript": {Name: "coffeescript", CommentPrefix: "#", Extension: ".coffee"},
	"ruby":         {Name: "ruby", CommentPrefix: "#", Extension: ".rb"},
	"python":       {Name: "python", CommentPrefix: "#", Extension: ".py"},
}

// LookupLanguage returns the Language for name.
func LookupLanguage(name string) (Language, error) {
	lang, ok := languages[strings.ToLower(name)]
	if !ok {
		return Language{}, fmt.Errorf("unsupported language %q (supported: %s)", name, strings.Join(LanguageNames(), ", "))
	}
	return lang, nil
}

// LanguageNames lists supported languages alphabetically.
func LanguageNames() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
