// Package lang maps file paths to languages and the comment syntax the
// condensing transforms need.
package lang

import (
	"path"
	"strings"
)

// Category groups languages by how their content is condensed.
type Category string

const (
	CategorySource   Category = "source"
	CategoryMarkup   Category = "markup"
	CategoryData     Category = "data"
	CategoryConfig   Category = "config"
	CategoryDocument Category = "document"
	CategoryOther    Category = "other"
)

// Language describes one language known to the condenser.
type Language struct {
	Name        string
	Category    Category
	LineComment string
	BlockStart  string
	BlockEnd    string
	// Docstrings marks languages whose documentation lives in string
	// literals inside the body (Python).
	Docstrings bool
	// Indented marks languages whose blocks are delimited by indentation.
	Indented bool
}

// IsSource reports whether the language is a programming language.
func (l Language) IsSource() bool { return l.Category == CategorySource }

// Unknown is returned for paths no rule matches.
var Unknown = Language{Name: "text", Category: CategoryOther}

var (
	cStyle = func(name string) Language {
		return Language{Name: name, Category: CategorySource, LineComment: "//", BlockStart: "/*", BlockEnd: "*/"}
	}
	hashStyle = func(name string) Language {
		return Language{Name: name, Category: CategorySource, LineComment: "#"}
	}
)

var byExtension = map[string]Language{
	".go":    cStyle("go"),
	".js":    cStyle("javascript"),
	".mjs":   cStyle("javascript"),
	".cjs":   cStyle("javascript"),
	".jsx":   cStyle("javascript"),
	".ts":    cStyle("typescript"),
	".tsx":   cStyle("typescript"),
	".java":  cStyle("java"),
	".kt":    cStyle("kotlin"),
	".scala": cStyle("scala"),
	".c":     cStyle("c"),
	".h":     cStyle("c"),
	".cc":    cStyle("cpp"),
	".cpp":   cStyle("cpp"),
	".hpp":   cStyle("cpp"),
	".cs":    cStyle("csharp"),
	".rs":    cStyle("rust"),
	".swift": cStyle("swift"),
	".php":   cStyle("php"),
	".dart":  cStyle("dart"),
	".proto": {Name: "protobuf", Category: CategoryConfig, LineComment: "//", BlockStart: "/*", BlockEnd: "*/"},
	".py":    {Name: "python", Category: CategorySource, LineComment: "#", Docstrings: true, Indented: true},
	".rb":    hashStyle("ruby"),
	".sh":    hashStyle("shell"),
	".bash":  hashStyle("shell"),
	".zsh":   hashStyle("shell"),
	".pl":    hashStyle("perl"),
	".r":     hashStyle("r"),
	".ex":    hashStyle("elixir"),
	".exs":   hashStyle("elixir"),
	".sql":   {Name: "sql", Category: CategorySource, LineComment: "--", BlockStart: "/*", BlockEnd: "*/"},
	".lua":   {Name: "lua", Category: CategorySource, LineComment: "--"},
	".hs":    {Name: "haskell", Category: CategorySource, LineComment: "--", BlockStart: "{-", BlockEnd: "-}"},
	".md":    {Name: "markdown", Category: CategoryMarkup},
	".mdx":   {Name: "markdown", Category: CategoryMarkup},
	".rst":   {Name: "rst", Category: CategoryMarkup},
	".txt":   {Name: "text", Category: CategoryDocument},
	".html":  {Name: "html", Category: CategoryMarkup, BlockStart: "<!--", BlockEnd: "-->"},
	".htm":   {Name: "html", Category: CategoryMarkup, BlockStart: "<!--", BlockEnd: "-->"},
	".xml":   {Name: "xml", Category: CategoryData, BlockStart: "<!--", BlockEnd: "-->"},
	".json":  {Name: "json", Category: CategoryData},
	".jsonl": {Name: "jsonl", Category: CategoryData},
	".csv":   {Name: "csv", Category: CategoryData},
	".tsv":   {Name: "csv", Category: CategoryData},
	".yaml":  {Name: "yaml", Category: CategoryConfig, LineComment: "#"},
	".yml":   {Name: "yaml", Category: CategoryConfig, LineComment: "#"},
	".toml":  {Name: "toml", Category: CategoryConfig, LineComment: "#"},
	".ini":   {Name: "ini", Category: CategoryConfig, LineComment: ";"},
	".cfg":   {Name: "ini", Category: CategoryConfig, LineComment: "#"},
	".env":   {Name: "dotenv", Category: CategoryConfig, LineComment: "#"},
	".lock":  {Name: "lockfile", Category: CategoryData},
	".sum":   {Name: "checksums", Category: CategoryData},
}

var byFilename = map[string]Language{
	"dockerfile":  {Name: "dockerfile", Category: CategoryConfig, LineComment: "#"},
	"makefile":    {Name: "make", Category: CategoryConfig, LineComment: "#"},
	"go.mod":      {Name: "gomod", Category: CategoryConfig, LineComment: "//"},
	"go.sum":      {Name: "checksums", Category: CategoryData},
	"gemfile":     hashStyle("ruby"),
	"rakefile":    hashStyle("ruby"),
	"jenkinsfile": cStyle("groovy"),
}

// Detect returns the language of p based on its file name or extension.
func Detect(p string) Language {
	base := strings.ToLower(path.Base(p))
	if l, ok := byFilename[base]; ok {
		return l
	}
	if strings.HasPrefix(base, "dockerfile.") {
		return byFilename["dockerfile"]
	}
	if l, ok := byExtension[path.Ext(base)]; ok {
		return l
	}
	if strings.HasPrefix(base, "readme") || strings.HasPrefix(base, "license") || strings.HasPrefix(base, "changelog") {
		return Language{Name: "text", Category: CategoryDocument}
	}
	return Unknown
}
