package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/fatih/color"
	gyaml "github.com/goccy/go-yaml"
	"github.com/golang/glog"
	"github.com/mattn/go-isatty"

	"github.com/kevinwang15/paramtree"
)

const ParamTreeVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", 0)
}

func main() {
	usage := `Parameter tree tool.

Usage:
    paramtree tree <file> [--keep-primitive] [--json] [--v=<level>]
    paramtree set <file> <assignment>... [--by-path] [--json] [--apply] [--v=<level>]
    paramtree diff <base> <updated> --id=<field> [--color=<when>] [--v=<level>]
    paramtree -h | --help
    paramtree --version

An assignment is <nodeId>=<value>, with node ids as printed by "paramtree tree".

Options:
    -h --help          Show this screen.
    --version          Show version.
    --keep-primitive   Show null values as they are instead of as "null".
    --json             Print JSON instead of text or YAML.
    --by-path          Place edits by full key path instead of by key name.
    --apply            Print the whole document with the edits applied.
    --id=<field>       Field that identifies a record in both snapshots.
    --color=<when>     auto, always or never [default: auto].
    --v=<level>        Log verbosity [default: 0].`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], ParamTreeVersion)
	if err != nil {
		panic(err)
	}

	level, _ := opts.String("--v")
	flag.Set("logtostderr", "true")
	flag.Set("v", level)
	defer glog.Flush()

	if tree_, _ := opts.Bool("tree"); tree_ {
		err = tree(opts)
	} else if set_, _ := opts.Bool("set"); set_ {
		err = set(opts)
	} else if diff_, _ := opts.Bool("diff"); diff_ {
		err = diff(opts)
	}
	if err != nil {
		Err.Printf("%s", err)
		os.Exit(1)
	}
}

func loadDocument(path string) (*paramtree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return paramtree.Parse(data)
}

func tree(opts docopt.Opts) error {
	path, _ := opts.String("<file>")
	keepPrimitive, _ := opts.Bool("--keep-primitive")
	asJSON, _ := opts.Bool("--json")

	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	forest := doc.Tree(paramtree.BuildOptions{KeepPrimitive: keepPrimitive, Allocator: paramtree.NewIDAllocator()})

	if asJSON {
		b, err := json.MarshalIndent(forest, "", "  ")
		if err != nil {
			return err
		}
		Out.Printf("%s", b)
		return nil
	}
	for _, n := range paramtree.Flatten(forest) {
		pad := strings.Repeat("  ", n.Level)
		if n.Leaf {
			Out.Printf("%4d %s%s = %v", n.NodeID, pad, n.ID, n.Value)
		} else {
			Out.Printf("%4d %s%s:", n.NodeID, pad, n.ID)
		}
	}
	return nil
}

func set(opts docopt.Opts) error {
	path, _ := opts.String("<file>")
	byPath, _ := opts.Bool("--by-path")
	asJSON, _ := opts.Bool("--json")
	apply, _ := opts.Bool("--apply")
	assignments, _ := opts["<assignment>"].([]string)

	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	forest := doc.Tree(paramtree.BuildOptions{Allocator: paramtree.NewIDAllocator()})

	var changed []*paramtree.Node
	for _, a := range assignments {
		id, value, err := paramtree.ParseAssignment(a)
		if err != nil {
			return err
		}
		node, ok := paramtree.Edit(forest, id, value)
		if !ok {
			return fmt.Errorf("no node with id %d", id)
		}
		changed = append(changed, node)
	}

	patch := paramtree.Reconcile(changed, forest, paramtree.ReconcileOptions{MatchByPath: byPath})
	glog.V(1).Infof("[set] %d edits touched %d top-level keys\n", len(changed), patch.Len())

	var out []byte
	switch {
	case apply:
		doc.Apply(patch)
		out, err = doc.Marshal()
	case asJSON:
		out, err = json.Marshal(patch)
	default:
		out, err = gyaml.Marshal(patch)
	}
	if err != nil {
		return err
	}
	Out.Printf("%s", strings.TrimRight(string(out), "\n"))
	return nil
}

func loadRecords(path string) ([]paramtree.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []paramtree.Record
	if err := gyaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func diff(opts docopt.Opts) error {
	basePath, _ := opts.String("<base>")
	updatedPath, _ := opts.String("<updated>")
	idField, _ := opts.String("--id")
	when, _ := opts.String("--color")

	switch when {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd())
	}

	base, err := loadRecords(basePath)
	if err != nil {
		return err
	}
	updated, err := loadRecords(updatedPath)
	if err != nil {
		return err
	}

	res := paramtree.DiffCollections(base, updated, idField)
	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()
	changed := color.New(color.FgYellow).SprintFunc()

	for _, rec := range res.Added {
		Out.Printf("%s %v", added("+"), rec[idField])
	}
	for _, rec := range res.Removed {
		Out.Printf("%s %v", removed("-"), rec[idField])
	}
	for _, u := range res.Updated {
		Out.Printf("%s %v", changed("~"), u.Updated[idField])
		for _, c := range u.FieldDiff {
			Out.Printf("    %s %s: %v -> %v", c.Type, strings.Join(c.Path, "."), c.From, c.To)
		}
	}
	if moved := paramtree.OrderChanges(base, updated, idField); len(moved) > 0 {
		Out.Printf("moved: %v", moved)
	}
	Out.Printf("%d unchanged", len(res.Unchanged))
	return nil
}
