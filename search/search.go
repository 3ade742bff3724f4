// Package search scans another process's committed private memory for image key candidates.
package search

import (
	"context"
	"fmt"
	"runtime"

	"wxkey/coloransi"
	"wxkey/keyerr"
	"wxkey/process"
	"wxkey/process/memory_map"

	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	DefaultMaxRegionSize = 100 * process.MiB
	DefaultProgressEvery = 10
)

// Progress receives the number of scanned regions and the number of enumerated regions.
type Progress func(scanned, total int)

// Searcher holds configuration for the scan
type Searcher struct {
	MaxRegionSize process.ProcessMemorySize
	ProgressEvery int
	OnProgress    Progress
	// Verify accepts a 32-byte candidate. It defaults to VerifyAESKey against the block
	// passed to FindAESKey.
	Verify func(candidate []byte) bool

	log *logger.Logger
}

// Option is a function that configures a Searcher
type Option func(*Searcher)

func WithMaxRegionSize(size process.ProcessMemorySize) Option {
	return func(s *Searcher) {
		s.MaxRegionSize = size
	}
}

func WithProgressEvery(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.ProgressEvery = n
		}
	}
}

func WithProgress(fn Progress) Option {
	return func(s *Searcher) {
		s.OnProgress = fn
	}
}

func WithVerifier(fn func(candidate []byte) bool) Option {
	return func(s *Searcher) {
		s.Verify = fn
	}
}

// Stats summarises one scan.
type Stats struct {
	Total      int
	Scanned    int
	Skipped    int // larger than MaxRegionSize, never read
	Unreadable int
	Candidates int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned %d/%d regions, skipped %d, unreadable %d, candidates %d",
		s.Scanned, s.Total, s.Skipped, s.Unreadable, s.Candidates)
}

func newSearcher(options []Option) *Searcher {
	s := &Searcher{
		MaxRegionSize: DefaultMaxRegionSize,
		ProgressEvery: DefaultProgressEvery,
		log:           logger.NewLogger(coloransi.Component("scanner")),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Searcher) report(scanned, total int) {
	if s.OnProgress != nil {
		s.OnProgress(scanned, total)
	}
}

// FindAESKey opens pid with open and scans its committed private regions for a key that
// decrypts block to a JPEG or PNG header. It returns the first 16 characters of the first
// verified candidate, or "" when none verifies.
//
// A failed open is returned wrapping process.ErrProcessNotOpen. The process is closed on
// every path.
func FindAESKey(ctx context.Context, open process.Opener, pid process.ProcessID, block []byte, options ...Option) (string, Stats, error) {
	s := newSearcher(options)
	if s.Verify == nil {
		s.Verify = func(candidate []byte) bool { return VerifyAESKey(block, candidate) }
	}

	proc, err := open(pid)
	if err != nil {
		return "", Stats{}, fmt.Errorf("open %s: %w", pid, err)
	}
	defer proc.Close()

	if err := proc.UpdateMemoryMap(); err != nil {
		return "", Stats{}, fmt.Errorf("memory map of %s: %w", pid, err)
	}
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return "", Stats{}, fmt.Errorf("memory map of %s: %w", pid, err)
	}

	key, stats, err := s.scan(ctx, proc, filterScanTargets(mm))
	s.log.Infoln(pid, stats)
	return key, stats, err
}

func filterScanTargets(mm []memory_map.MemoryMapItem) []memory_map.MemoryMapItem {
	out := make([]memory_map.MemoryMapItem, 0, len(mm))
	for _, it := range mm {
		if it.IsScanTarget() {
			out = append(out, it)
		}
	}
	return out
}

func (s *Searcher) scan(ctx context.Context, proc process.Process, regions []memory_map.MemoryMapItem) (string, Stats, error) {
	stats := Stats{Total: len(regions)}
	reported := 0

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return "", stats, keyerr.Canceled("内存扫描已取消", err)
		}

		if process.ProcessMemorySize(region.Size) > s.MaxRegionSize {
			stats.Skipped++
			continue
		}

		data, err := proc.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil || len(data) == 0 {
			s.log.Debugln("unreadable", region.String(), err)
			stats.Unreadable++
			continue
		}

		var found []byte
		ScanCandidates(data, func(candidate []byte) bool {
			stats.Candidates++
			if s.Verify(candidate) {
				found = candidate
				return false
			}
			return true
		})
		stats.Scanned++

		if found != nil {
			s.log.Infoln("key verified in region", region.String())
			return string(found[:16]), stats, nil
		}

		if stats.Scanned%s.ProgressEvery == 0 {
			s.report(stats.Scanned, stats.Total)
			reported = stats.Scanned
		}
		runtime.Gosched()
	}

	if reported != stats.Scanned {
		s.report(stats.Scanned, stats.Total)
	}
	return "", stats, nil
}
