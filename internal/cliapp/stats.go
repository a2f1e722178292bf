package cliapp

import (
	"fmt"

	"github.com/zk2u/ckt/internal/bristol"
	"github.com/zk2u/ckt/internal/gate"
	"github.com/zk2u/ckt/internal/v5a"
	"github.com/zk2u/ckt/internal/v5b"
	"github.com/zk2u/ckt/internal/v5c"
	"github.com/zk2u/ckt/pkg/fs"
)

// stats is the format-independent summary compare/verify/info report,
// mirroring VerificationStats in the original CLI's statistics struct.
type stats struct {
	Format        fileFormat
	XORGates      uint64
	ANDGates      uint64
	PrimaryInputs uint64
	NumOutputs    uint64
	ScratchSpace  uint64 // v5b/v5c only
	NumLevels     uint64 // v5b only
	FileSize      int64
	Checksum      [32]byte
	ChecksumValid bool // false for bristol, which has no checksum

	// MainRegionBytes and OutputsBytes break the checksum's hashed byte
	// count into the gate-data region (blocks or levels) and the
	// outputs vector, 0/0 for bristol.
	MainRegionBytes int64
	OutputsBytes    int64
}

func (s stats) TotalGates() uint64 { return s.XORGates + s.ANDGates }

// loadStats sniffs path's format and runs the matching independent
// checksum/parse pass, returning a normalized summary.
func loadStats(fsys fs.FS, path string) (stats, error) {
	format, err := sniffFormat(fsys, path)
	if err != nil {
		return stats{}, err
	}

	switch format {
	case formatV5A:
		return statsV5A(fsys, path)
	case formatV5B:
		return statsV5B(fsys, path)
	case formatV5C:
		return statsV5C(fsys, path)
	default:
		return statsBristol(fsys, path)
	}
}

func statsV5A(fsys fs.FS, path string) (stats, error) {
	result, err := v5a.VerifyChecksum(fsys, path)
	if err != nil && result.Header.TotalGates() == 0 {
		return stats{}, err
	}

	return stats{
		Format:          formatV5A,
		XORGates:        result.Header.XORGates,
		ANDGates:        result.Header.ANDGates,
		PrimaryInputs:   result.Header.PrimaryInputs,
		NumOutputs:      result.Header.NumOutputs,
		FileSize:        result.FileSize,
		Checksum:        result.Computed,
		ChecksumValid:   err == nil,
		MainRegionBytes: result.BlocksHashed,
		OutputsBytes:    result.OutputsBytes,
	}, nil
}

func statsV5B(fsys fs.FS, path string) (stats, error) {
	result, err := v5b.VerifyChecksum(fsys, path)
	if err != nil && result.Header.TotalGates() == 0 {
		return stats{}, err
	}

	return stats{
		Format:          formatV5B,
		XORGates:        result.Header.XORGates,
		ANDGates:        result.Header.ANDGates,
		PrimaryInputs:   result.Header.PrimaryInputs,
		NumOutputs:      result.Header.NumOutputs,
		ScratchSpace:    result.Header.ScratchSpace,
		NumLevels:       uint64(result.Header.NumLevels),
		FileSize:        result.FileSize,
		Checksum:        result.Computed,
		ChecksumValid:   err == nil,
		MainRegionBytes: result.LevelsHashed,
		OutputsBytes:    result.OutputsBytes,
	}, nil
}

func statsV5C(fsys fs.FS, path string) (stats, error) {
	result, err := v5c.VerifyChecksum(fsys, path)
	if err != nil && result.Header.TotalGates() == 0 {
		return stats{}, err
	}

	return stats{
		Format:          formatV5C,
		XORGates:        result.Header.XORGates,
		ANDGates:        result.Header.ANDGates,
		PrimaryInputs:   result.Header.PrimaryInputs,
		NumOutputs:      result.Header.NumOutputs,
		ScratchSpace:    result.Header.ScratchSpace,
		FileSize:        result.FileSize,
		Checksum:        result.Computed,
		ChecksumValid:   err == nil,
		MainRegionBytes: result.BlocksHashed,
		// v5c hashes the outputs section at its padded size, 4 bytes an entry.
		OutputsBytes: int64(v5c.PaddedSize(int(result.Header.NumOutputs) * 4)),
	}, nil
}

func statsBristol(fsys fs.FS, path string) (stats, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return stats{}, err
	}
	defer file.Close()

	gates, err := bristol.ReadAll(file)
	if err != nil {
		return stats{}, fmt.Errorf("parse bristol file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return stats{}, err
	}

	s := stats{Format: formatBristol, FileSize: info.Size(), PrimaryInputs: bristol.PrimaryInputs(gates)}

	for _, g := range gates {
		if g.Type == gate.AND {
			s.ANDGates++
		} else {
			s.XORGates++
		}
	}

	fanout := bristol.Fanout(gates)
	s.NumOutputs = uint64(len(bristol.Outputs(gates, fanout)))

	return s, nil
}
