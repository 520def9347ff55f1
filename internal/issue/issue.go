// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	NoTargetsId
	TargetNotFoundId
	InvalidNamespaceId
	DirNotFoundId
	InvalidEncodingId
	WriteFailedId
	FilesWouldChangeId
)

type MarkdownMsg string

type HttpLink string

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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Check the error message above for the offending field path
- Compare your file with a freshly generated one:
~~~
$ nswrap config init --force --output /tmp/nswrap.cue
~~~

- Print the configuration nswrap actually uses:
~~~
$ nswrap config show
~~~

## Minimal nswrap.cue:
~~~cue
targets: [{
	name:      "gfx"
	namespace: "engine::gfx"
	root:      "."
	headers: {dir: "include/engine/gfx"}
	sources: {dir: "src"}
}]
~~~`,
	}

	noTargetsIssue = &Issue{
		id: NoTargetsId,
		mdMsg: `
# No targets to process!

nswrap needs at least one target: a namespace plus the directories whose
files belong in it.

## Things you can try:
- Create a configuration file in the current directory:
~~~
$ nswrap config init
~~~

- Or describe a single target on the command line:
~~~
$ nswrap wrap --namespace engine::gfx --headers include/engine/gfx --sources src
~~~`,
	}

	targetNotFoundIssue = &Issue{
		id: TargetNotFoundId,
		mdMsg: `
# Target not found!

A --target flag named a target that is not in the configuration.

## Things you can try:
- List the configured targets:
~~~
$ nswrap config show
~~~

- Check for typos in the target name`,
	}

	invalidNamespaceIssue = &Issue{
		id: InvalidNamespaceId,
		mdMsg: `
# Invalid namespace!

Namespaces must be plain or qualified C++ identifiers such as "gfx" or
"engine::gfx". Inline, anonymous and attributed namespaces are not supported.

## Things you can try:
- Remove spaces and leading or trailing "::"
- Make sure every segment starts with a letter or underscore`,
	}

	dirNotFoundIssue = &Issue{
		id: DirNotFoundId,
		mdMsg: `
# Directory not found!

A header or source directory of a target does not exist.

## Things you can try:
- Directories are relative to the target root, which is relative to the
  directory containing nswrap.cue
- Run nswrap from the repository root or pass --root`,
	}

	invalidEncodingIssue = &Issue{
		id: InvalidEncodingId,
		mdMsg: `
# File is not valid UTF-8!

nswrap only rewrites UTF-8 text. Files in legacy encodings are reported and
left untouched.

## Things you can try:
- Convert the file to UTF-8 with your editor or iconv:
~~~
$ iconv -f WINDOWS-1252 -t UTF-8 file.h > file.h.utf8 && mv file.h.utf8 file.h
~~~

- Add the file to the target's skip list`,
	}

	writeFailedIssue = &Issue{
		id: WriteFailedId,
		mdMsg: `
# Failed to write files!

One or more files could not be replaced. Files are written atomically, so
the originals are intact.

## Things you can try:
- Check permissions on the files and their directories
- Make sure no other process holds the files locked
- Run again with --verbose to see each failing file`,
	}

	filesWouldChangeIssue = &Issue{
		id: FilesWouldChangeId,
		mdMsg: `
# Files are not in canonical form!

"nswrap check" found files that the selected policy would rewrite.

## Things you can try:
- Apply the policy:
~~~
$ nswrap normalize
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id(): configLoadFailedIssue,
		noTargetsIssue.Id():        noTargetsIssue,
		targetNotFoundIssue.Id():   targetNotFoundIssue,
		invalidNamespaceIssue.Id(): invalidNamespaceIssue,
		dirNotFoundIssue.Id():      dirNotFoundIssue,
		invalidEncodingIssue.Id():  invalidEncodingIssue,
		writeFailedIssue.Id():      writeFailedIssue,
		filesWouldChangeIssue.Id(): filesWouldChangeIssue,
	}
)

// Values returns all catalog issues ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
