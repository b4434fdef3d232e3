// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ResultsInvalidId
	AnnotationDisabledId
	TargetsSkippedId
	SaveFailedId
	BenchmarkTimeoutId
	PermissionDeniedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is Markdown rendered for the user.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry with longer guidance than an error message can hold.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render renders the entry with the glamour style at stylePath ("dark", "light",
// "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- " + string(link) + "\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

perfjam could not read or validate its configuration file.

## Things you can try:
- Print the file perfjam is using:
~~~
$ perfjam config path
~~~

- Compare it with the defaults:
~~~
$ perfjam config show
~~~

- Durations are strings such as "90s" or "5m", and priorities are "normal" or "high":
~~~cue
runner: {
	timeout:  "5m"
	priority: "high"
}
~~~`,
	}

	resultsInvalidIssue = &Issue{
		id: ResultsInvalidId,
		mdMsg: `
# Invalid results file!

The results file handed to ` + "`perfjam annotate`" + ` could not be read.

## Things you can try:
- Check that each ` + "`[[target]]`" + ` has a ` + "`package`" + ` and a ` + "`name`" + `
- Use ` + "`nan`" + ` for bounds that were not measured and ` + "`inf`" + ` / ` + "`-inf`" + ` for unbounded ones
- Units must match the metric: time metrics take ns, us, ms or s; gc.alloc takes B, KB, MB or GB`,
	}

	annotationDisabledIssue = &Issue{
		id: AnnotationDisabledId,
		mdMsg: `
# Annotation is disabled!

Rewriting limits changes your source files, so it is off unless enabled.

## Things you can try:
- Enable it in your configuration:
~~~cue
annotate: enabled: true
~~~

- Or enable it for a single run:
~~~
$ perfjam annotate --force results.toml
~~~`,
	}

	targetsSkippedIssue = &Issue{
		id: TargetsSkippedId,
		mdMsg: `
# Some benchmarks were not annotated!

Skipped benchmarks keep their previous limits.

## Common causes:
- The source changed after the benchmarks ran (checksum mismatch)
- The benchmark was renamed or moved, so its declaration was not found
- The declaration has no ` + "`//perfjam:limit`" + ` directive for a measured metric

## Things you can try:
- Re-run the benchmarks on the current sources and annotate again
- Add a directive with unset bounds above the benchmark:
~~~go
//perfjam:limit time NaN NaN ns
func BenchmarkSum(b *testing.B) {
~~~`,
	}

	saveFailedIssue = &Issue{
		id: SaveFailedId,
		mdMsg: `
# Failed to write annotations!

Some files could not be rewritten. Files are replaced atomically, so each one holds
either its old or its new content.

## Things you can try:
- Check that the source directory is writable
- Run the annotation again; already written files are left unchanged`,
	}

	benchmarkTimeoutIssue = &Issue{
		id: BenchmarkTimeoutId,
		mdMsg: `
# Benchmark took too long!

The in-process runner stopped waiting for the benchmark. Its worker keeps running in
the background until the process exits.

## Things you can try:
- Raise the timeout:
~~~cue
runner: timeout: "15m"
~~~

- Run long benchmarks out of process`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Common causes:
- Raising the scheduling priority needs CAP_SYS_NICE; perfjam continues at normal priority
- The source or sidecar file is read-only

## Things you can try:
- Use ` + "`runner: priority: \"normal\"`" + ` to skip the priority change
- Check file ownership of the benchmark sources`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		resultsInvalidIssue.Id():     resultsInvalidIssue,
		annotationDisabledIssue.Id(): annotationDisabledIssue,
		targetsSkippedIssue.Id():     targetsSkippedIssue,
		saveFailedIssue.Id():         saveFailedIssue,
		benchmarkTimeoutIssue.Id():   benchmarkTimeoutIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
