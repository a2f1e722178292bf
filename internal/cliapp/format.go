package cliapp

import (
	"errors"
	"fmt"
	"io"

	"github.com/zk2u/ckt/internal/v5a"
	"github.com/zk2u/ckt/internal/v5b"
	"github.com/zk2u/ckt/internal/v5c"
	"github.com/zk2u/ckt/pkg/fs"
)

// fileFormat is a container kind as determined by sniffFormat.
type fileFormat int

const (
	formatBristol fileFormat = iota
	formatV5A
	formatV5B
	formatV5C
)

func (f fileFormat) String() string {
	switch f {
	case formatV5A:
		return "v5a"
	case formatV5B:
		return "v5b"
	case formatV5C:
		return "v5c"
	default:
		return "bristol"
	}
}

var errUnknownFormatByte = errors.New("cliapp: unrecognized v5 format byte")

// sniffFormat inspects a file's magic and format byte (spec §6 "a reader
// MUST refuse any file whose magic, version, or format byte does not
// match") to decide which package should handle it. A file that doesn't
// open with the v5 magic is treated as Bristol text — the only other
// format this CLI understands.
func sniffFormat(fsys fs.FS, path string) (fileFormat, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	head := make([]byte, 6)
	if _, err := io.ReadFull(io.NewSectionReader(file, 0, 6), head); err != nil {
		return formatBristol, nil //nolint:nilerr // short/non-binary file: fall back to bristol
	}

	if [4]byte(head[0:4]) != v5a.Magic {
		return formatBristol, nil
	}

	switch head[5] {
	case v5a.FormatType:
		return formatV5A, nil
	case v5b.FormatType:
		return formatV5B, nil
	case v5c.FormatType:
		return formatV5C, nil
	default:
		return 0, fmt.Errorf("%w: %#x", errUnknownFormatByte, head[5])
	}
}
