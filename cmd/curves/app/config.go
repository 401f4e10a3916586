package app

import (
	"errors"
	"flag"
	"os"
	"strings"
)

type Config struct {
	DBPath     string
	ImportFile string
	Export     []string
	OutputFile string
	List       bool
	Delete     string
	Verbose    bool
}

func NewConfigFromCLI() (*Config, error) {
	return newConfigFromArgs(flag.CommandLine, os.Args[1:])
}

func newConfigFromArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	c := &Config{}

	var export string
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.StringVar(&c.ImportFile, "import", "", "CSV file to import, one array per column")
	fs.StringVar(&export, "export", "", "Comma separated array names to export as CSV")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the exported CSV file (default stdout)")
	fs.BoolVar(&c.List, "list", false, "List stored arrays")
	fs.StringVar(&c.Delete, "delete", "", "Name of the array to delete")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for _, name := range strings.Split(export, ",") {
		if name = strings.TrimSpace(name); name != "" {
			c.Export = append(c.Export, name)
		}
	}

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.ImportFile == "" && len(c.Export) == 0 && !c.List && c.Delete == "" {
		err = errors.New("nothing to do: use -import, -export, -list or -delete")
	} else if c.OutputFile != "" && len(c.Export) == 0 {
		err = errors.New("output file requires -export")
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	return c, nil
}
