package cobertura

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/IgorBayerl/covreport/internal/filereader"
	"github.com/IgorBayerl/covreport/internal/parser"
)

// CoberturaParser implements the parser.IParser interface for Cobertura XML reports.
type CoberturaParser struct {
	fileReader FileReader
}

// NewCoberturaParser creates a new CoberturaParser.
func NewCoberturaParser(fileReader FileReader) parser.IParser {
	return &CoberturaParser{fileReader: fileReader}
}

func init() {
	parser.RegisterParser(NewCoberturaParser(filereader.NewLocalFileReader()))
}

// Name returns the name of the parser.
func (cp *CoberturaParser) Name() string {
	return "Cobertura"
}

// SupportsFile checks if the root element of the XML file is <coverage>.
func (cp *CoberturaParser) SupportsFile(filePath string) bool {
	if !strings.HasSuffix(strings.ToLower(filePath), ".xml") {
		return false
	}
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	decoder := xml.NewDecoder(f)
	for {
		token, err := decoder.Token()
		if err != nil {
			return false
		}
		if se, ok := token.(xml.StartElement); ok {
			return se.Name.Local == "coverage"
		}
	}
}

// Parse processes the Cobertura XML file and transforms it into a common ParserResult.
func (cp *CoberturaParser) Parse(filePath string, config parser.ParserConfig) (*parser.ParserResult, error) {
	report, err := loadCoberturaXML(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load/unmarshal Cobertura XML from %s: %w", filePath, err)
	}

	sourceDirs := config.SourceDirectories()
	if len(sourceDirs) == 0 {
		sourceDirs = report.Sources.Source
	}

	orchestrator := newProcessingOrchestrator(cp.fileReader, config, sourceDirs)
	assemblies := orchestrator.processPackages(report.Packages.Package)

	timestamp := parseTimestamp(report.Timestamp)

	return &parser.ParserResult{
		Assemblies:             assemblies,
		SourceDirectories:      sourceDirs,
		SupportsBranchCoverage: true,
		ParserName:             cp.Name(),
		MinimumTimeStamp:       timestamp,
		MaximumTimeStamp:       timestamp,
	}, nil
}

func loadCoberturaXML(path string) (*coverageXML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var report coverageXML
	if err := xml.NewDecoder(f).Decode(&report); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}
	return &report, nil
}

// parseTimestamp accepts both seconds (coverage.py, gcovr) and milliseconds (Java tooling).
func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ts <= 0 {
		return nil
	}
	var t time.Time
	if ts > 100_000_000_000 {
		t = time.UnixMilli(ts)
	} else {
		t = time.Unix(ts, 0)
	}
	return &t
}
