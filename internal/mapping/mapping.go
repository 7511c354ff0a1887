// Package mapping reads the source -> target relay configuration.
//
// Each non-blank line has the form "<sourcePageId> -> <targetPageId>". Lines
// starting with '#' are comments. Any malformed line fails the whole file.
package mapping

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/orgball2608/fb-repost-bot/internal/domain"
	"github.com/samber/lo"
)

const separator = "->"

var (
	ErrSyntax = errors.New("invalid mapping line")
	ErrCyclic = errors.New("page cannot be mapped to itself")
)

// LineError locates a parse failure.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func ParseFile(path string) ([]domain.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()

	mappings, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mappings, nil
}

func Parse(r io.Reader) ([]domain.Mapping, error) {
	var mappings []domain.Mapping

	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m, err := parseLine(line)
		if err != nil {
			return nil, &LineError{Line: n, Text: line, Err: err}
		}
		mappings = append(mappings, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}

	return mappings, nil
}

func parseLine(line string) (domain.Mapping, error) {
	src, tgt, ok := strings.Cut(line, separator)
	if !ok {
		return domain.Mapping{}, fmt.Errorf("%w: missing %q", ErrSyntax, separator)
	}

	sourceID, err := parseID(src)
	if err != nil {
		return domain.Mapping{}, err
	}
	targetID, err := parseID(tgt)
	if err != nil {
		return domain.Mapping{}, err
	}
	if sourceID == targetID {
		return domain.Mapping{}, fmt.Errorf("%w: %d", ErrCyclic, sourceID)
	}

	return domain.Mapping{SourcePageID: sourceID, TargetPageID: targetID}, nil
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad page id %q", ErrSyntax, s)
	}
	return id, nil
}

// Plan is the resolved mapping set: unique page ids in first-seen order and
// the allowed sources of every target.
type Plan struct {
	Mappings      []domain.Mapping
	SourceIDs     []int64
	TargetIDs     []int64
	TargetSources map[int64][]int64
}

func Resolve(mappings []domain.Mapping) Plan {
	unique := lo.Uniq(mappings)

	plan := Plan{
		Mappings:      unique,
		SourceIDs:     lo.Uniq(lo.Map(unique, func(m domain.Mapping, _ int) int64 { return m.SourcePageID })),
		TargetIDs:     lo.Uniq(lo.Map(unique, func(m domain.Mapping, _ int) int64 { return m.TargetPageID })),
		TargetSources: make(map[int64][]int64),
	}
	for _, m := range unique {
		plan.TargetSources[m.TargetPageID] = append(plan.TargetSources[m.TargetPageID], m.SourcePageID)
	}
	return plan
}
