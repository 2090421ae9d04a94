// Package program holds the representation of the generated load-test program
// and renders it to a locustfile.
package program

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"transformer/internal/scenario"
)

// Program is the complete generated program.
type Program struct {
	// Imports are import statements, one per entry.
	Imports []string
	// Globals are module-level statements placed after the imports.
	Globals []string
	// Users are the generated user classes, one per top-level scenario.
	Users []User
}

// User is a generated user class.
type User struct {
	Name   string
	Host   string
	Weight int
	Tasks  []TaskFunc
}

// TaskFunc is a generated task method.
type TaskFunc struct {
	Name string
	Body []string
}

var defaultImports = []string{
	"from locust import HttpUser, task",
	"import time",
}

// Build creates the program for the given description: one user class per
// top-level scenario, holding the tasks of its whole subtree. Scenarios without
// a positive weight get weight 1.
func Build(d *scenario.Description) *Program {
	p := &Program{
		Imports: append([]string(nil), defaultImports...),
	}

	names := newNamer()

	for _, s := range d.Scenarios {
		if s == nil {
			continue
		}

		u := User{
			Name:   names.class(s.Name),
			Host:   d.Host,
			Weight: max(s.Weight, 1),
		}

		methods := newNamer()
		for _, t := range s.AllTasks() {
			u.Tasks = append(u.Tasks, TaskFunc{
				Name: methods.method(t.Name),
				Body: taskBody(t),
			})
		}

		p.Users = append(p.Users, u)
	}

	return p
}

// AddImport appends stmt unless it is already imported.
func (p *Program) AddImport(stmt string) {
	for _, imp := range p.Imports {
		if imp == stmt {
			return
		}
	}

	p.Imports = append(p.Imports, stmt)
}

func taskBody(t scenario.Task) []string {
	args := []string{strconv.Quote(t.URL)}

	if len(t.Headers) > 0 {
		args = append(args, "headers="+pyDict(t.Headers))
	}

	if t.Body != "" {
		args = append(args, "data="+strconv.Quote(t.Body))
	}

	body := []string{
		fmt.Sprintf("self.client.request(%s, %s)", strconv.Quote(t.Method), strings.Join(args, ", ")),
	}

	if t.ThinkTime > 0 {
		body = append(body, fmt.Sprintf("time.sleep(%g)", t.ThinkTime.Seconds()))
	}

	return body
}

func pyDict(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, strconv.Quote(k)+": "+strconv.Quote(m[k]))
	}

	return "{" + strings.Join(pairs, ", ") + "}"
}

// namer produces unique identifiers within one scope.
type namer struct {
	used map[string]bool
	next map[string]int
}

func newNamer() *namer {
	return &namer{used: map[string]bool{}, next: map[string]int{}}
}

func (n *namer) class(name string) string {
	return n.unique(identifier(name, true), "User")
}

func (n *namer) method(name string) string {
	return n.unique(identifier(name, false), "request")
}

// unique returns id, or id with the first free numeric suffix. Names the
// generated module binds at class scope get a trailing "_".
func (n *namer) unique(id, fallback string) string {
	if id == "" {
		id = fallback
	}

	if shadowed[id] {
		id += "_"
	}

	cand := id
	for i := max(n.next[id], 2); n.used[cand]; i++ {
		cand = fmt.Sprintf("%s_%d", id, i)
		n.next[id] = i + 1
	}

	n.used[cand] = true

	return cand
}

// shadowed are names the template relies on inside class bodies.
var shadowed = map[string]bool{
	"task":     true,
	"HttpUser": true,
}

// pythonKeywords cannot be used as identifiers.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// identifier turns free text into a Python identifier, in CamelCase for classes
// and snake_case for methods.
func identifier(s string, camel bool) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, w := range words {
		if camel {
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		} else {
			words[i] = strings.ToLower(w)
		}
	}

	sep := "_"
	if camel {
		sep = ""
	}

	id := strings.Join(words, sep)
	if id != "" && unicode.IsDigit(rune(id[0])) {
		id = "_" + id
	}

	if pythonKeywords[id] {
		id += "_"
	}

	return id
}
