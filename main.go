// This is the main-driver for our compiler.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kbocek/subc/diag"
	"github.com/kbocek/subc/emitter"
	"github.com/kbocek/subc/lexer"
	"github.com/kbocek/subc/parser"
)

func main() {

	//
	// Look for flags.
	//
	debug := flag.Bool("debug", false, "Insert debug \"stuff\" in our generated output.")
	output := flag.String("o", "", "Assemble (and link) the generated program to this path, via cc.")
	run := flag.Bool("run", false, "Run the binary, post-assembly.")
	flag.Parse()

	//
	// Running implies assembling; default the output path if the
	// caller didn't name one.
	//
	if *run && *output == "" {
		*output = "a.out"
	}

	//
	// Ensure we have a source program as our single argument.
	//
	if len(flag.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "invalid argument count")
		os.Exit(1)
	}
	source := flag.Args()[0]

	//
	// Lex.
	//
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		fmt.Fprint(os.Stderr, diag.NewReporter(source).Format(err))
		os.Exit(1)
	}

	//
	// Parse.
	//
	functions, err := parser.Parse(tokens)
	if err != nil {
		fmt.Fprint(os.Stderr, diag.NewReporter(source).Format(err))
		os.Exit(1)
	}

	//
	// Emit.
	//
	var asm bytes.Buffer
	gen := emitter.New(&asm)
	if *debug {
		gen.SetDebug(true)
	}
	if err := gen.Emit(functions); err != nil {
		fmt.Fprint(os.Stderr, diag.NewReporter(source).Format(err))
		os.Exit(1)
	}

	//
	// If we're not assembling the program then we just write the
	// generated assembly to STDOUT, and terminate.
	//
	if *output == "" {
		fmt.Print(asm.String())
		return
	}

	//
	// OK, we're assembling (and maybe linking) the program, via cc.
	//
	cc := exec.Command("cc", "-static", "-o", *output, "-x", "assembler", "-")
	cc.Stdout = os.Stdout
	cc.Stderr = os.Stderr
	cc.Stdin = &asm

	if err := cc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error invoking assembler: %s\n", err)
		os.Exit(1)
	}

	//
	// Running the binary too?
	//
	if *run {
		// exec.Command resolves a name without a path separator via
		// $PATH, so run a bare name (such as the default a.out) from
		// the current directory explicitly.
		binary := *output
		if !strings.ContainsRune(binary, '/') {
			binary = "./" + binary
		}
		exe := exec.Command(binary)
		exe.Stdin = os.Stdin
		exe.Stdout = os.Stdout
		exe.Stderr = os.Stderr
		if err := exe.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				os.Exit(exitErr.ExitCode())
			}
			fmt.Fprintf(os.Stderr, "error running %s: %s\n", *output, err)
			os.Exit(1)
		}
	}
}
