package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "lint":
		os.Exit(runLint(os.Args[2:]))
	case "new":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: courseengine new <project-name>")
			os.Exit(1)
		}
		if err := runNew(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("courseengine %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`courseengine - A course publishing engine built with Go, Echo, and templ

Usage:
  courseengine <command> [arguments]

Commands:
  lint [-strict] <dir>    Check a content directory for corpus integrity
  new <name>              Create a new courseengine project
  version                 Print the courseengine version
  help                    Show this help message

Examples:
  courseengine lint content
  courseengine new mycourse
  courseengine new github.com/user/mycourse`)
}
