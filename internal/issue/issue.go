// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies an entry in the issue catalog.
type Id int

const (
	PackageNotFoundId Id = iota + 1
	InvalidPackageId
	ModuleNotFoundId
	ModuleParseErrorId
	ShellSyntaxErrorId
	ConfigLoadFailedId
	InvalidLayoutId
	TestsFailedId
	NoTestsFoundId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

// Renderer turns Markdown into terminal output.
type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guide with the given glamour style ("dark", "light",
// "notty", or a path to a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

The directory given to scitest does not exist or cannot be read.

## Things you can try:
- Check the path for typos
- Run scitest from the directory that contains the package
~~~
$ scitest run ./scipy
~~~`,
	}

	invalidPackageIssue = &Issue{
		id: InvalidPackageId,
		mdMsg: `
# Not a package!

A package is a directory containing an ` + "`__init__.cue`" + ` marker file.
Discovery refuses to start from a directory without one.

## Things you can try:
- Create the marker file:
~~~
$ touch ./mypkg/__init__.cue
~~~
- Point scitest at the package root rather than one of its sub-directories`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

The importer searched every root on the search path and found no file for the
requested module name.

## Search order:
1. The package's own directory
2. The companion ` + "`tests`" + ` directory, when running module tests
3. Paths listed in ` + "`search_paths`" + ` of your config file

## Things you can try:
- Check the module name; dotted names map to directories (` + "`a.b`" + ` is ` + "`a/b.cue`" + `)
- Run ` + "`scitest list`" + ` to see what discovery finds`,
	}

	moduleParseErrorIssue = &Issue{
		id: ModuleParseErrorId,
		mdMsg: `
# Failed to parse module!

A module file is not valid CUE or does not match the module schema.

## Module structure:
~~~cue
description: "Shape manipulation"

test_suite: [
  {
    name: "test_reshape"
    run:  "echo 6"
    want: "6"
  },
]
~~~

## Things you can try:
- Check the line reported in the error
- Every case needs a unique ` + "`name`" + ` and a ` + "`run`" + ` script
- Unknown fields are rejected; check spelling`,
	}

	shellSyntaxErrorIssue = &Issue{
		id: ShellSyntaxErrorId,
		mdMsg: `
# Invalid test script!

The ` + "`run`" + ` script of a test case is not valid POSIX shell.

## Things you can try:
- Check quoting and balanced brackets on the reported line
- Multi-line scripts can use CUE's triple-quoted strings`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

scitest reads ` + "`config.cue`" + ` from your config directory, or ` + "`scitest.cue`" + `
from the current directory, or the file given with ` + "`--config`" + `.

## Things you can try:
- Show the effective configuration:
~~~
$ scitest config show
~~~
- Check the file for CUE syntax errors
- Environment variables prefixed with ` + "`SCITEST_`" + ` override file values`,
	}

	invalidLayoutIssue = &Issue{
		id: InvalidLayoutId,
		mdMsg: `
# Invalid package layout!

The ` + "`layout`" + ` section of your configuration is incomplete.

## Things you can try:
- ` + "`module_ext`" + ` must start with a dot, e.g. ` + "`.cue`" + `
- ` + "`init_file`" + ` must be a bare file name
- ` + "`tests_dir`" + ` must not be empty`,
	}

	testsFailedIssue = &Issue{
		id: TestsFailedId,
		mdMsg: `
# Tests failed!

One or more test cases failed or raised an error. Failures are listed above
with the desired and actual values; errors include the location they came from.

## Things you can try:
- Re-run a single module's tests:
~~~
$ scitest module test scipy.base
~~~
- Stop at the first problem with ` + "`--fail-fast`" + ``,
	}

	noTestsFoundIssue = &Issue{
		id: NoTestsFoundId,
		mdMsg: `
# No tests found!

Discovery finished without finding a single test case.

## Things you can try:
- Add a ` + "`test_suite`" + ` list to a module
- Check the ` + "`ignore`" + ` patterns in your config and on the command line
- Run with ` + "`--verbose`" + ` to see which modules had no suite`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watch mode failed!

The file watcher could not be started.

## Things you can try:
- On Linux, raise the inotify watch limit:
~~~
$ sysctl fs.inotify.max_user_watches=524288
~~~
- Narrow the ` + "`watch.patterns`" + ` in your config`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#limitations"},
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():  packageNotFoundIssue,
		invalidPackageIssue.Id():   invalidPackageIssue,
		moduleNotFoundIssue.Id():   moduleNotFoundIssue,
		moduleParseErrorIssue.Id(): moduleParseErrorIssue,
		shellSyntaxErrorIssue.Id(): shellSyntaxErrorIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
		invalidLayoutIssue.Id():    invalidLayoutIssue,
		testsFailedIssue.Id():      testsFailedIssue,
		noTestsFoundIssue.Id():     noTestsFoundIssue,
		watchFailedIssue.Id():      watchFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	all := maps.Values(issues)
	slices.SortFunc(all, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return all
}

func Get(id Id) *Issue {
	return issues[id]
}
