package main

import (
	"flag"
	"fmt"
	"os"

	courseengine "github.com/eringen/courseengine"
	"github.com/eringen/courseengine/lint"
)

// runLint checks a content directory and prints every finding. Exit code 1
// means the corpus is not publishable.
func runLint(args []string) int {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	strict := fs.Bool("strict", false, "treat warnings as errors")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: courseengine lint [-strict] <dir>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	dir := fs.Arg(0)
	if dir == "" {
		dir = "content"
	}

	lessons, err := courseengine.LoadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	result := courseengine.LintLessons(lessons)
	for _, issue := range result.Issues {
		fmt.Println(issue.Error())
	}

	errs, warns := 0, 0
	for _, issue := range result.Issues {
		if issue.Severity == lint.Error {
			errs++
		} else {
			warns++
		}
	}
	fmt.Printf("%d pages, %d errors, %d warnings\n", len(lessons), errs, warns)

	if result.Errors(*strict) {
		return 1
	}
	return 0
}
