package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/segbase/seglib/seglib"
	"github.com/segbase/seglib/segment"
)

var (
	output  = flag.String("out", "", "")
	config  = flag.String("config", "", "")
	verbose = flag.Bool("verbose", false, "")

	// Display usage if true.
	showHelp = flag.Bool("help", false, "")
)

const helpMessage = `
joinseg computes the join of two serialized label fields of the same shape:
two positions share a label in the output if and only if they share a label
in both inputs.  The joined field is written to -out or stdout.

Usage: joinseg [options] <field1> <field2>

	-out            =string   Output field file (default stdout)
	-config         =string   TOML config file (compression, checksum, log)
	-verbose        (flag)    Log at debug level with size and timing info
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

func readField(path string) (*seglib.Field, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seglib.DeserializeField(b)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() {
		fmt.Print(helpMessage)
	}
	flag.Parse()

	if *showHelp || flag.NArg() != 2 {
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

	s1, err := readField(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
	s2, err := readField(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", flag.Arg(1), err)
		os.Exit(1)
	}

	timedLog := seglib.NewTimeLog()
	joined, err := segment.JoinSegmentations(s1, s2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to join segmentations: %v\n", err)
		os.Exit(1)
	}
	timedLog.Debugf("Joined two fields of shape %v", s1.Shape())

	b, err := seglib.SerializeField(joined, compress, checksum)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error serializing joined field: %v\n", err)
		os.Exit(1)
	}
	if *output == "" {
		if _, err = os.Stdout.Write(b); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing joined field: %v\n", err)
			os.Exit(1)
		}
	} else if err = os.WriteFile(*output, b, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing joined field: %v\n", err)
		os.Exit(1)
	}
	seglib.Debugf("Wrote %s of joined output\n", humanize.Bytes(uint64(len(b))))
}
