package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/segbase/seglib/mapstore"
	"github.com/segbase/seglib/seglib"
	"github.com/segbase/seglib/segment"
)

var (
	input   = flag.String("in", "", "")
	output  = flag.String("out", "", "")
	offset  = flag.Uint64("offset", 1, "")
	store   = flag.String("store", "", "")
	name    = flag.String("name", "", "")
	config  = flag.String("config", "", "")
	verbose = flag.Bool("verbose", false, "")

	// Display usage if true.
	showHelp = flag.Bool("help", false, "")
)

const helpMessage = `
relabel maps the distinct labels of a serialized label field onto a dense
range starting at -offset, keeping label 0 as background.  Input is read from
-in or stdin, output written to -out or stdout.  With -store and -name, the
forward and inverse maps are saved as <name>/fw and <name>/inv for later use
with the applymap tool.

Usage: relabel [options]

	-in             =string   Input field file (default stdin)
	-out            =string   Output field file (default stdout)
	-offset         =number   First label of the dense output range (default 1)
	-store          =string   Map store directory for saving forward/inverse maps
	-name           =string   Name under which maps are saved in -store
	-config         =string   TOML config file (compression, checksum, log)
	-verbose        (flag)    Log at debug level with size and timing info
	-h, -help       (flag)    Show help message
`

type tomlConfig struct {
	Compression string
	Checksum    string
	Log         seglib.LogConfig
}

// loadConfig reads an optional TOML config and returns the serialization
// settings, defaulting to snappy + CRC32.
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

func readField(path string) (*seglib.Field, error) {
	var b []byte
	var err error
	if path == "" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return seglib.DeserializeField(b)
}

func writeField(path string, f *seglib.Field, compress seglib.Compression, checksum seglib.Checksum) (int, error) {
	b, err := seglib.SerializeField(f, compress, checksum)
	if err != nil {
		return 0, err
	}
	if path == "" {
		_, err = os.Stdout.Write(b)
		return len(b), err
	}
	return len(b), os.WriteFile(path, b, 0644)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() {
		fmt.Print(helpMessage)
	}
	flag.Parse()

	if *showHelp || flag.NArg() != 0 {
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

	field, err := readField(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input field: %v\n", err)
		os.Exit(1)
	}

	timedLog := seglib.NewTimeLog()
	relabeled, fw, inv, err := segment.RelabelSequential(field, *offset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to relabel field: %v\n", err)
		os.Exit(1)
	}
	timedLog.Debugf("Relabeled %s field of shape %v", humanize.Bytes(uint64(len(field.Bytes()))), field.Shape())

	written, err := writeField(*output, relabeled, compress, checksum)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing relabeled field: %v\n", err)
		os.Exit(1)
	}
	seglib.Debugf("Wrote %s of %s output\n", humanize.Bytes(uint64(written)), relabeled.DataType())

	if *store != "" {
		if *name == "" {
			fmt.Fprintf(os.Stderr, "The -store option requires a -name for the saved maps\n")
			os.Exit(1)
		}
		s, err := mapstore.Open(*store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		defer s.Close()
		if err := s.Put(*name+"/fw", fw); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving forward map: %v\n", err)
			os.Exit(1)
		}
		if err := s.Put(*name+"/inv", inv); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving inverse map: %v\n", err)
			os.Exit(1)
		}
		seglib.Infof("Saved forward and inverse maps under %q\n", *name)
	}
}
