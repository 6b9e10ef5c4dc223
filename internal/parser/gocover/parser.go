package gocover

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IgorBayerl/covreport/internal/filereader"
	"github.com/IgorBayerl/covreport/internal/parser"
	"golang.org/x/tools/cover"
)

// GoCoverParser reads profiles written by "go test -coverprofile".
type GoCoverParser struct {
	fileReader FileReader
}

// NewGoCoverParser creates a parser that reads sources through fileReader.
func NewGoCoverParser(fileReader FileReader) parser.IParser {
	return &GoCoverParser{fileReader: fileReader}
}

func init() {
	parser.RegisterParser(NewGoCoverParser(filereader.NewLocalFileReader()))
}

func (p *GoCoverParser) Name() string {
	return "GoCover"
}

// SupportsFile reports whether the first line of the file is a coverprofile mode line.
func (p *GoCoverParser) SupportsFile(filePath string) bool {
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(scanner.Text()), "mode:")
}

func (p *GoCoverParser) Parse(filePath string, config parser.ParserConfig) (*parser.ParserResult, error) {
	profiles, err := cover.ParseProfiles(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go cover profile %s: %w", filePath, err)
	}

	orchestrator := newProcessingOrchestrator(p.fileReader, config)
	assemblies := orchestrator.processProfiles(profiles)

	var timestamp *time.Time
	if info, err := os.Stat(filePath); err == nil {
		t := info.ModTime()
		timestamp = &t
	}

	return &parser.ParserResult{
		Assemblies:             assemblies,
		SourceDirectories:      config.SourceDirectories(),
		SupportsBranchCoverage: false,
		ParserName:             p.Name(),
		MinimumTimeStamp:       timestamp,
		MaximumTimeStamp:       timestamp,
	}, nil
}
