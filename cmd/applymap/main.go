package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/segbase/seglib/mapstore"
	"github.com/segbase/seglib/seglib"
)

var (
	input   = flag.String("in", "", "")
	output  = flag.String("out", "", "")
	store   = flag.String("store", "", "")
	name    = flag.String("name", "", "")
	list    = flag.Bool("list", false, "")
	config  = flag.String("config", "", "")
	verbose = flag.Bool("verbose", false, "")

	// Display usage if true.
	showHelp = flag.Bool("help", false, "")
)

const helpMessage = `
applymap applies a stored label map to a serialized label field.  Maps are
saved by the relabel tool as <name>/fw and <name>/inv, so -name=cells/fw
re-applies the relabeling while -name=cells/inv reconstructs original labels.
With -list, the names of all stored maps are printed instead.

Usage: applymap -store=<dir> [options]

	-in             =string   Input field file (default stdin)
	-out            =string   Output field file (default stdout)
	-store          =string   Map store directory (required)
	-name           =string   Name of the stored map to apply
	-list           (flag)    List stored map names and exit
	-config         =string   TOML config file (compression, checksum, log)
	-verbose        (flag)    Log at debug level
	-h, -help       (flag)    Show help message
`

type tomlConfig struct {
	Compression string
	Checksum    string
	Log         seglib.LogConfig
}

func loadConfig(path string) (compress seglib.Compression, checksum seglib.Checksum, err error) {
	var tc tomlConfig
	if path != "" {
		if _, err = toml.DecodeFile(path, &tc); err != nil {
			return 0, 0, fmt.Errorf("could not decode TOML config %s: %v", path, err)
		}
	}
	tc.Log.SetLogger()
	if tc.Compression == "" {
		tc.Compression = "snappy"
	}
	if tc.Checksum == "" {
		tc.Checksum = "crc32"
	}
	if compress, err = seglib.ParseCompression(tc.Compression); err != nil {
		return
	}
	checksum, err = seglib.ParseChecksum(tc.Checksum)
	return
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() {
		fmt.Print(helpMessage)
	}
	flag.Parse()

	if *showHelp || flag.NArg() != 0 || *store == "" {
		flag.Usage()
		os.Exit(0)
	}
	if *verbose {
		seglib.SetLogMode(seglib.DebugMode)
	}

	compress, checksum, err := loadConfig(*config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	s, err := mapstore.Open(*store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if *list {
		names, err := s.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing stored maps: %v\n", err)
			os.Exit(1)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}
	if *name == "" {
		fmt.Fprintf(os.Stderr, "A -name is required unless -list is given\n")
		os.Exit(1)
	}

	m, err := s.Get(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading map %q: %v\n", *name, err)
		os.Exit(1)
	}

	var b []byte
	if *input == "" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(*input)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input field: %v\n", err)
		os.Exit(1)
	}
	field, err := seglib.DeserializeField(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deserializing input field: %v\n", err)
		os.Exit(1)
	}

	timedLog := seglib.NewTimeLog()
	mapped, err := m.LookupField(field)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to apply map %q: %v\n", *name, err)
		os.Exit(1)
	}
	timedLog.Debugf("Applied map %q to field of shape %v", *name, field.Shape())

	out, err := seglib.SerializeField(mapped, compress, checksum)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error serializing mapped field: %v\n", err)
		os.Exit(1)
	}
	if *output == "" {
		if _, err = os.Stdout.Write(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing mapped field: %v\n", err)
			os.Exit(1)
		}
	} else if err = os.WriteFile(*output, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing mapped field: %v\n", err)
		os.Exit(1)
	}
}
