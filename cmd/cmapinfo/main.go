package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tdewolff/argp"
	cmap "github.com/tdewolff/fontcmap"
)

func main() {
	// os.Exit doesn't execute pending defer calls, this is fixed by
	// encapsulating run().
	os.Exit(run())
}

func run() int {
	ranges := []string{}
	index := 0
	var quiet bool
	var input string

	cmd := argp.New("Print cmap glyph ranges for Unicode codepoint ranges - Taco de Wolff")
	cmd.AddOpt(&quiet, "q", "quiet", "Suppress warnings.")
	cmd.AddOpt(&index, "", "index", "Index into font collection (used with TTC or OTC).")
	cmd.AddOpt(argp.Append{&ranges}, "r", "range", "Unicode codepoint range, eg. 41-5A or 1F600-1F64F. May be repeated.")
	cmd.AddArg(&input, "input", "Input font file (TTF/OTF/TTC/OTC).")
	cmd.Parse()

	Error := log.New(os.Stderr, "ERROR: ", 0)
	Warning := log.New(io.Discard, "", 0)
	if !quiet {
		Warning = log.New(os.Stderr, "WARNING: ", 0)
	}

	if len(ranges) == 0 {
		Error.Println("no codepoint ranges given, use -r")
		return 1
	}

	b, err := os.ReadFile(input)
	if err != nil {
		Error.Println(err)
		return 1
	}

	cmapBytes, err := findCmapTable(b, index)
	if err != nil {
		Error.Println(err)
		return 1
	}

	codepointRanges, err := parseRanges(ranges)
	if err != nil {
		Error.Println(err)
		return 1
	}

	mapping, err := cmap.Resolve(cmapBytes, codepointRanges)
	if err != nil {
		Error.Println(err)
		return 1
	}

	for _, m := range mapping {
		if m.Glyphs.Start == 0 && m.Glyphs.End == 0 {
			Warning.Printf("U+%04X: no glyph in font\n", m.CodepointStart)
			continue
		}
		fmt.Printf("U+%04X: glyph %d-%d\n", m.CodepointStart, m.Glyphs.Start, m.Glyphs.End)
	}
	return 0
}

// parseRanges parses "START-END" hex codepoint ranges, eg. "41-5A".
func parseRanges(args []string) ([]cmap.CodepointRange, error) {
	out := make([]cmap.CodepointRange, 0, len(args))
	for _, s := range args {
		dash := strings.IndexByte(s, '-')
		if dash == -1 {
			return nil, fmt.Errorf("invalid range %q, expected START-END", s)
		}
		start, err := strconv.ParseUint(s[:dash], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", s, err)
		}
		end, err := strconv.ParseUint(s[dash+1:], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", s, err)
		}
		if end < start {
			return nil, fmt.Errorf("invalid range %q: end before start", s)
		}
		out = append(out, cmap.CodepointRange{Start: uint32(start), End: uint32(end)})
	}
	return out, nil
}

// findCmapTable walks an SFNT (TTF/OTF) or TTC table directory far enough
// to extract the bytes of the "cmap" table, nothing more. Directory parsing
// is otherwise out of scope for this tool; this is the minimum needed to
// hand cmap.Resolve a byte slice.
func findCmapTable(b []byte, index int) ([]byte, error) {
	if len(b) < 12 {
		return nil, fmt.Errorf("invalid font file")
	}

	offset := uint32(0)
	if string(b[:4]) == "ttcf" {
		if len(b) < 16 {
			return nil, fmt.Errorf("invalid font collection")
		}
		numFonts := int(binary.BigEndian.Uint32(b[8:]))
		if index < 0 || numFonts <= index {
			return nil, fmt.Errorf("font index %d out of range, collection has %d fonts", index, numFonts)
		}
		dirOffset := 12 + 4*index
		if len(b) < dirOffset+4 {
			return nil, fmt.Errorf("invalid font collection")
		}
		offset = binary.BigEndian.Uint32(b[dirOffset:])
	} else if index != 0 {
		return nil, fmt.Errorf("font index %d given but file is not a collection", index)
	}

	if uint32(len(b)) < offset+12 {
		return nil, fmt.Errorf("invalid font file")
	}
	numTables := int(binary.BigEndian.Uint16(b[offset+4:]))
	recordsStart := offset + 12
	if uint32(len(b)) < recordsStart+uint32(16*numTables) {
		return nil, fmt.Errorf("invalid font file")
	}

	for i := 0; i < numTables; i++ {
		rec := b[recordsStart+uint32(16*i):]
		tag := string(rec[:4])
		tableOffset := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		if tag != "cmap" {
			continue
		}
		if uint32(len(b)) < tableOffset || uint32(len(b))-tableOffset < length {
			return nil, fmt.Errorf("invalid cmap table")
		}
		return b[tableOffset : tableOffset+length], nil
	}
	return nil, fmt.Errorf("no cmap table found")
}
