package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/bvsmt/bvsmt"
	"github.com/davecgh/go-spew/spew"
)

// SimplifyCommand represents a command for simplifying a graph file.
type SimplifyCommand struct{}

// NewSimplifyCommand returns a new instance of SimplifyCommand.
func NewSimplifyCommand() *SimplifyCommand {
	return &SimplifyCommand{}
}

// Run executes the "simplify" subcommand.
func (cmd *SimplifyCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bvsmt-simplify", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose")
	debug := fs.Bool("debug", false, "dump statistics after simplification")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("graph file required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many graph files specified")
	}

	log.SetFlags(0)
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}

	r := os.Stdin
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	g := bvsmt.NewGraph()
	roots, err := readGraph(g, r)
	if err != nil {
		return err
	}

	g.EliminateApplies()

	for _, root := range roots {
		fmt.Println(g.Resolve(root))
	}

	if *debug {
		spew.Fdump(os.Stderr, g.Stats())
	}
	return nil
}

func (cmd *SimplifyCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: bvsmt simplify [arguments] FILE

Reads a line-oriented expression graph from FILE ("-" for stdin),
eliminates all lambda applications, and prints the simplified roots.

Each line is either a comment (starting with ";"), a root declaration
"root ID", or a node declaration:

	ID const WIDTH VALUE
	ID var WIDTH NAME
	ID param WIDTH NAME
	ID not CHILD
	ID and|add|eq|concat A B
	ID lambda PARAM BODY
	ID apply FUN ARG

Nodes must be declared before they are referenced.

The following flags are available:

	-v
	    Enable verbose logging.
	-debug
	    Dump simplification statistics to stderr.
`[1:])
}

// readGraph parses the line-oriented graph format, returning the
// declared roots in declaration order.
func readGraph(g *bvsmt.Graph, r io.Reader) ([]*bvsmt.Node, error) {
	nodes := make(map[uint64]*bvsmt.Node)
	var roots []*bvsmt.Node

	child := func(field string) (*bvsmt.Node, error) {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid node reference: %q", field)
		}
		n, ok := nodes[id]
		if !ok {
			return nil, fmt.Errorf("node %d referenced before declaration", id)
		}
		return n, nil
	}

	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "root" {
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: malformed root declaration", lineno)
			}
			n, err := child(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s", lineno, err)
			}
			roots = append(roots, n)
			continue
		}

		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: malformed node declaration", lineno)
		}
		id, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid node id: %q", lineno, fields[0])
		} else if _, ok := nodes[id]; ok {
			return nil, fmt.Errorf("line %d: node %d declared twice", lineno, id)
		}

		var n *bvsmt.Node
		switch op, args := fields[1], fields[2:]; op {
		case "const", "var", "param":
			if len(args) != 2 {
				return nil, fmt.Errorf("line %d: %s requires a width and a payload", lineno, op)
			}
			width, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid width: %q", lineno, args[0])
			}
			switch op {
			case "const":
				value, err := strconv.ParseUint(args[1], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid constant: %q", lineno, args[1])
				}
				n = g.Const(value, uint(width))
			case "var":
				n = g.Var(args[1], uint(width))
			case "param":
				n = g.Param(args[1], uint(width))
			}

		case "not":
			if len(args) != 1 {
				return nil, fmt.Errorf("line %d: not requires one operand", lineno)
			}
			x, err := child(args[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s", lineno, err)
			}
			n = g.Not(x)

		case "and", "add", "eq", "concat", "lambda", "apply":
			if len(args) != 2 {
				return nil, fmt.Errorf("line %d: %s requires two operands", lineno, op)
			}
			x, err := child(args[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s", lineno, err)
			}
			y, err := child(args[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s", lineno, err)
			}
			switch op {
			case "and":
				n = g.And(x, y)
			case "add":
				n = g.Add(x, y)
			case "eq":
				n = g.Eq(x, y)
			case "concat":
				n = g.Concat(x, y)
			case "lambda":
				n = g.Lambda(x, y)
			case "apply":
				n = g.Apply(x, y)
			}

		default:
			return nil, fmt.Errorf("line %d: unknown operator: %q", lineno, fields[1])
		}

		nodes[id] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return roots, nil
}
