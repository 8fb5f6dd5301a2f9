// Command verdict inspects, converts and evaluates rule files.
//
// Rule files are chosen by extension (.json, .yaml, .yml, .gob), rule
// databases too (.db and .bolt open bbolt, .sqlite and .sqlite3 open
// SQLite). Defaults come from the environment: VERDICT_DB sets the
// database path and VERDICT_TRACE turns on evaluation reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexeyco/simpletable"
	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/rulekit/verdict"
	"github.com/rulekit/verdict/storage"
	"github.com/rulekit/verdict/storage/bolt"
	"github.com/rulekit/verdict/storage/sqlite"
)

type config struct {
	DB    string `env:"VERDICT_DB" envDefault:"verdict.db"`
	Trace bool   `env:"VERDICT_TRACE" envDefault:"false"`
}

func main() {
	if err := run(os.Stdout, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(stdout io.Writer, args []string) error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return errors.Wrap(err, "read environment")
	}

	if len(args) < 2 {
		usage(stdout, args[0])
		return errors.New("missing command")
	}

	switch args[1] {
	case "validate":
		return runValidate(stdout, args[2:])
	case "tree":
		return runTree(stdout, args[2:])
	case "eval":
		return runEval(stdout, cfg, args[2:])
	case "convert":
		return runConvert(stdout, args[2:])
	case "push":
		return runPush(stdout, cfg, args[2:])
	case "pull":
		return runPull(stdout, cfg, args[2:])
	case "ls":
		return runList(stdout, cfg, args[2:])
	case "help", "-h", "--help":
		usage(stdout, args[0])
		return nil
	}
	return errors.Errorf("unknown command %q", args[1])
}

func usage(w io.Writer, name string) {
	fmt.Fprintln(w, filepath.Base(name)+` usage:

    verdict validate <rule-file>
    verdict tree <rule-file>
    verdict eval [-context JSON] [-trace] <rule-file>
    verdict convert <in-file> <out-file>
    verdict push [-db path] <rule-file>...
    verdict pull [-db path] -id <rule-id> <out-file>
    verdict ls [-db path]

Rule files are chosen by extension: .json, .yaml, .yml, .gob.
Databases are chosen by extension: .db and .bolt open bbolt,
.sqlite and .sqlite3 open SQLite.`)
}

func runValidate(stdout io.Writer, args []string) error {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("validate: expected one rule file")
	}

	r, err := loadRule(flags.Arg(0))
	if err != nil {
		return err
	}

	meta := r.Meta()
	fmt.Fprintf(stdout, "%s\n", r)
	fmt.Fprintf(stdout, "id:       %s\n", meta.ID)
	fmt.Fprintf(stdout, "version:  %s\n", meta.Version)
	if t, err := time.Parse(time.RFC3339Nano, meta.Created); err == nil {
		fmt.Fprintf(stdout, "created:  %s (%s)\n", meta.Created, humanize.Time(t))
	} else {
		fmt.Fprintf(stdout, "created:  %s\n", meta.Created)
	}
	fmt.Fprintf(stdout, "requires: %s\n", strings.Join(r.RequiredParams(), ", "))
	return nil
}

func runTree(stdout io.Writer, args []string) error {
	flags := flag.NewFlagSet("tree", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("tree: expected one rule file")
	}

	r, err := loadRule(flags.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, r.Tree())
	return nil
}

func runEval(stdout io.Writer, cfg config, args []string) error {
	flags := flag.NewFlagSet("eval", flag.ContinueOnError)
	var (
		ctxJSON = flags.String("context", "{}", "evaluation context as a JSON object")
		trace   = flags.Bool("trace", cfg.Trace, "print an evaluation report")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("eval: expected one rule file")
	}

	r, err := loadRule(flags.Arg(0))
	if err != nil {
		return err
	}

	ectx := verdict.Context{}
	if err := json.Unmarshal([]byte(*ctxJSON), &ectx); err != nil {
		return errors.Wrap(err, "parse context")
	}

	engine := verdict.NewEngine(verdict.CollectDiagnostics(*trace))
	d, err := engine.Evaluate(r, ectx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s\n", d)
	if *trace && d.Trace != nil {
		fmt.Fprintln(stdout, d.Trace.Report(r, ectx))
	}
	return nil
}

func runConvert(stdout io.Writer, args []string) error {
	flags := flag.NewFlagSet("convert", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return errors.New("convert: expected an input and an output rule file")
	}

	r, err := loadRule(flags.Arg(0))
	if err != nil {
		return err
	}
	out, err := openStore(flags.Arg(1))
	if err != nil {
		return err
	}
	if err := out.Store(r); err != nil {
		return err
	}

	info, err := os.Stat(flags.Arg(1))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%s)\n", flags.Arg(1), humanize.Bytes(uint64(info.Size())))
	return nil
}

func runPush(stdout io.Writer, cfg config, args []string) error {
	flags := flag.NewFlagSet("push", flag.ContinueOnError)
	db := flags.String("db", cfg.DB, "rule database path")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return errors.New("push: expected at least one rule file")
	}

	repo, err := openRepo(*db)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()
	for _, path := range flags.Args() {
		r, err := loadRule(path)
		if err != nil {
			return errors.Wrapf(err, "load %s", path)
		}
		if err := repo.Put(ctx, r); err != nil {
			return errors.Wrapf(err, "store %s", path)
		}
		fmt.Fprintf(stdout, "pushed %s (%s)\n", r.Name(), r.ID())
	}
	return nil
}

func runPull(stdout io.Writer, cfg config, args []string) error {
	flags := flag.NewFlagSet("pull", flag.ContinueOnError)
	var (
		db = flags.String("db", cfg.DB, "rule database path")
		id = flags.String("id", "", "rule id to pull")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("pull: missing -id")
	}
	if flags.NArg() != 1 {
		return errors.New("pull: expected one output rule file")
	}

	repo, err := openRepo(*db)
	if err != nil {
		return err
	}
	defer repo.Close()

	r, err := repo.Get(context.Background(), *id)
	if err != nil {
		return err
	}
	out, err := openStore(flags.Arg(0))
	if err != nil {
		return err
	}
	if err := out.Store(r); err != nil {
		return err
	}

	info, err := os.Stat(flags.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%s)\n", flags.Arg(0), humanize.Bytes(uint64(info.Size())))
	return nil
}

func runList(stdout io.Writer, cfg config, args []string) error {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	db := flags.String("db", cfg.DB, "rule database path")
	if err := flags.Parse(args); err != nil {
		return err
	}

	repo, err := openRepo(*db)
	if err != nil {
		return err
	}
	defer repo.Close()

	rules, err := repo.List(context.Background())
	if err != nil {
		return err
	}

	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "ID"},
			{Align: simpletable.AlignCenter, Text: "Name"},
			{Align: simpletable.AlignCenter, Text: "Version"},
			{Align: simpletable.AlignCenter, Text: "Required Params"},
		},
	}
	for _, r := range rules {
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Text: r.ID()},
			{Text: r.Name()},
			{Text: r.Meta().Version},
			{Text: strings.Join(r.RequiredParams(), ", ")},
		})
	}
	table.SetStyle(simpletable.StyleUnicode)

	fmt.Fprintln(stdout, table.String())
	fmt.Fprintf(stdout, "%d rules\n", len(rules))
	return nil
}

func loadRule(path string) (*verdict.Rule, error) {
	st, err := openStore(path)
	if err != nil {
		return nil, err
	}
	return st.Load()
}

func openStore(path string) (storage.Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return storage.NewJSONFile(path)
	case ".yaml", ".yml":
		return storage.NewYAMLFile(path)
	case ".gob":
		return storage.NewGobFile(path)
	}
	return nil, errors.Errorf("unsupported rule file %q (want .json, .yaml, .yml or .gob)", path)
}

func openRepo(path string) (storage.Repository, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".bolt":
		return bolt.Open(path)
	case ".sqlite", ".sqlite3":
		return sqlite.Open(path)
	}
	return nil, errors.Errorf("unsupported rule database %q (want .db, .bolt, .sqlite or .sqlite3)", path)
}
