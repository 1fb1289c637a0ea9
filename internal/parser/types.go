package parser

type DefinitionKind int

const (
	KindOther DefinitionKind = iota
	KindDefinition
	KindTheorem
)

func (k DefinitionKind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindTheorem:
		return "theorem"
	}
	return "other"
}

// Definition is a top-level let binding. Content holds the literal term body
// for theorem and definition bindings and is empty otherwise. Pos is the byte
// offset of the bound name. ModulePath is the dotted path of the enclosing
// module, empty at file scope. FilePath is set by the database when the
// definition is indexed.
type Definition struct {
	Name       string
	Kind       DefinitionKind
	Content    string
	Pos        int
	ModulePath string
	FilePath   string
}

// OpenDecl brings a module's definitions into unqualified scope from its
// source position onward.
type OpenDecl struct {
	Module string
	Pos    int
	End    int
}

// Module is a node in a file's module tree. FullName is the dotted path from
// the file root. The synthetic global module has empty Name and FullName and
// holds file-level open declarations.
type Module struct {
	Name     string
	FullName string
	Pos      int
	End      int
	Children []*Module
	Opens    []OpenDecl
	FilePath string
}

// Keywords carries the configurable classification keyword sets. The zero
// value means "base keywords only"; base-library files are always parsed with
// the zero value so user configuration cannot corrupt canonical libraries.
type Keywords struct {
	Imports     []string
	Definitions []string
	Theorems    []string
}

// Result is the outcome of parsing one file.
type Result struct {
	Definitions  []*Definition
	Dependencies []string
	Modules      []*Module // all modules, flattened in declaration order
	GlobalModule *Module
}

var (
	baseImportKeywords     = []string{"needs", "loads", "loadt", "flyspeck_needs"}
	baseTheoremKeywords    = []string{"prove", "prove_by_refinement"}
	baseDefinitionKeywords = []string{"new_definition", "new_basic_definition", "define"}
)

type keywordSets struct {
	imports     map[string]bool
	theorems    map[string]bool
	definitions map[string]bool
}

func newKeywordSets(kw Keywords) keywordSets {
	return keywordSets{
		imports:     toSet(baseImportKeywords, kw.Imports),
		theorems:    toSet(baseTheoremKeywords, kw.Theorems),
		definitions: toSet(baseDefinitionKeywords, kw.Definitions),
	}
}

func toSet(base, custom []string) map[string]bool {
	set := make(map[string]bool, len(base)+len(custom))
	for _, s := range base {
		set[s] = true
	}
	for _, s := range custom {
		if s != "" {
			set[s] = true
		}
	}
	return set
}
