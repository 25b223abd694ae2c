// verses-lint checks chapter text files the way the bulk upload would read them.
//
// Each file is one chapter. Usage: verses-lint [files...] (default ./verses/*.txt)
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scripturedash/verseparser"
)

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob("./verses/*.txt")
		if err != nil {
			fmt.Println("error: cannot read ./verses:", err)
			os.Exit(1)
		}
	}
	if len(files) == 0 {
		fmt.Println("no .txt verse files found in ./verses")
		return
	}

	exitCode := 0
	for _, f := range files {
		bad, err := lintFile(f, os.Stdout)
		if err != nil {
			fmt.Printf("%s: open error: %v\n", f, err)
			exitCode = 1
			continue
		}
		if bad > 0 {
			exitCode = 1
		} else {
			fmt.Printf("%s: OK\n", f)
		}
	}
	os.Exit(exitCode)
}

// lintFile reports problems in one file to out and returns how many blocking
// problems it found. Out-of-order numbering is printed but not counted.
func lintFile(path string, out io.Writer) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return lint(path, string(raw), out), nil
}

func lint(name, text string, out io.Writer) int {
	lines, err := verseparser.Parse(text)
	if err != nil {
		var perr *verseparser.ParseError
		if errors.As(err, &perr) && perr.Line > 0 {
			fmt.Fprintf(out, "%s:%d: %v: %q\n", name, perr.Line, perr.Kind, perr.Text)
		} else {
			fmt.Fprintf(out, "%s: %v\n", name, err)
		}
		return 1
	}

	bad := 0
	for _, issue := range verseparser.Audit(lines) {
		prefix := "warning: "
		if issue.Fatal() {
			prefix = ""
			bad++
		}
		fmt.Fprintf(out, "%s:%d: %s%s\n", name, issue.Line, prefix, issue.Message)
	}
	return bad
}
