package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/CognitoIQ/xmlupgrade/internal/commandline"
	"github.com/CognitoIQ/xmlupgrade/internal/ordered"
	"github.com/CognitoIQ/xmlupgrade/schema"
	"github.com/CognitoIQ/xmlupgrade/upgrade"
	"github.com/CognitoIQ/xmlupgrade/xmltree"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const usage = "Usage: xmlupgrade -model file -entity name [-config file] [-max-repeat n] " +
	"[-prefer owner=facet] [-clear path] [-regen path] [-report] [-diff] [-new] [-o file] [-v] [file.xml]"

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(arguments []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		prefer         commandline.KeyValue
		clears, regens commandline.Strings
		verbose        commandline.Count

		fs         = flag.NewFlagSet("xmlupgrade", flag.ContinueOnError)
		modelFile  = fs.String("model", "", "YAML schema model")
		entityName = fs.String("entity", "", "entity the document is an instance of")
		configFile = fs.String("config", "", "YAML settings file")
		maxRepeat  = fs.Int("max-repeat", upgrade.DefaultMaxRepeat, "maximum number of generated repetitions")
		generate   = fs.Bool("new", false, "generate an example document instead of upgrading one")
		report     = fs.Bool("report", false, "print match types and unused original content")
		showDiff   = fs.Bool("diff", false, "print a diff of the original and upgraded documents")
		output     = fs.String("o", "", "output file (default standard output)")
	)
	fs.SetOutput(stderr)
	fs.Var(&prefer, "prefer", "facet 'owner=facet' to generate for an owner (can be used multiple times)")
	fs.Var(&clears, "clear", "path of a node to remove (can be used multiple times)")
	fs.Var(&regens, "regen", "path of a node to regenerate (can be used multiple times)")
	fs.Var(&verbose, "v", "verbose logging (can be used multiple times)")

	if err := fs.Parse(arguments); err != nil {
		return err
	}
	if *modelFile == "" || *entityName == "" || fs.NArg() > 1 || *generate && fs.NArg() > 0 {
		return errors.New(usage)
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	model, err := schema.LoadFile(*modelFile)
	if err != nil {
		return err
	}
	entity := model.Lookup(*entityName)
	if entity == nil {
		return errors.Errorf("model %s has no entity %q", *modelFile, *entityName)
	}

	opts := []upgrade.Option{upgrade.LogOutput(logger)}
	if *configFile != "" {
		cfgOpts, err := loadConfig(*configFile)
		if err != nil {
			return err
		}
		opts = append(opts, cfgOpts...)
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "max-repeat" {
			opts = append(opts, upgrade.MaxRepeat(*maxRepeat))
		}
	})
	ordered.Range(prefer, func(owner, facet string) {
		opts = append(opts, upgrade.PreferFacet(owner, facet))
	})
	if verbose > 0 {
		opts = append(opts, upgrade.LogLevel(int(verbose)))
	}

	var original *xmltree.Element
	if !*generate {
		data, err := readInput(fs.Arg(0), stdin)
		if err != nil {
			return err
		}
		if original, err = xmltree.Parse(data); err != nil {
			return errors.Wrap(err, "parse original document")
		}
	}

	b := upgrade.NewBuilder(model, opts...)
	root, err := b.Build(entity, original)
	if err != nil {
		return err
	}
	for _, path := range clears {
		n := root.Find(path)
		if n == nil {
			return errors.Errorf("-clear: no node at %s", path)
		}
		cleared, err := b.ClearBranch(n)
		if err != nil {
			return err
		}
		root = cleared.Root()
	}
	for _, path := range regens {
		n := root.Find(path)
		if n == nil {
			return errors.Errorf("-regen: no node at %s", path)
		}
		replaced, err := b.ReplaceBranch(n, nil)
		if err != nil {
			return err
		}
		root = replaced.Root()
	}

	upgraded := xmltree.MarshalIndent(root.Element, "", "  ")
	if *output != "" {
		if err := os.WriteFile(*output, upgraded, 0666); err != nil {
			return err
		}
	} else if _, err := stdout.Write(upgraded); err != nil {
		return err
	}

	if *report {
		printReport(stderr, root, original)
	}
	if *showDiff && original != nil {
		printDiff(stderr, xmltree.MarshalIndent(original, "", "  "), upgraded)
	}
	return nil
}

func loadConfig(name string) ([]upgrade.Option, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()
	opts, err := upgrade.LoadConfig(f)
	return opts, errors.Wrapf(err, "config %s", name)
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(stdin)
		return data, errors.Wrap(err, "read standard input")
	}
	data, err := os.ReadFile(name)
	return data, errors.Wrap(err, "read original document")
}
