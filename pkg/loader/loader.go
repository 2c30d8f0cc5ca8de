// Package loader reads menu records and business units from data sources.
//
// Supported sources are picked by file extension:
//   - .json   array of records, or a document with records/menus/units
//   - .jsonl  one record per line
//   - .yaml   same shapes as .json
//   - .db     SQLite database with a menus table
package loader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treetable/pkg/model"
)

// Format identifies how a source file is decoded.
type Format string

const (
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat maps a path to its source format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unsupported source type: %s", path)
}

// Document is the structured form of a JSON or YAML source.
type Document struct {
	// Records are flat rows linked by parent_id
	Records []model.Record `json:"records,omitempty" yaml:"records,omitempty"`
	// Menus are already nested
	Menus []model.Menu `json:"menus,omitempty" yaml:"menus,omitempty"`
	// Units are nested business units
	Units []model.BusinessUnit `json:"units,omitempty" yaml:"units,omitempty"`
}

// Result is everything read from one or more sources.
type Result struct {
	Records []model.Record
	Units   []model.BusinessUnit
	Skipped int // Invalid records or lines that were dropped
}

// Merge appends other to res.
func (res *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	res.Records = append(res.Records, other.Records...)
	res.Units = append(res.Units, other.Units...)
	res.Skipped += other.Skipped
}

// Menus nests the loaded records into a forest.
func (res *Result) Menus() []model.Menu {
	return model.BuildMenus(res.Records)
}

// LoadError wraps a source failure with where it happened.
type LoadError struct {
	Path   string
	Format Format
	Cause  error
}

func (e *LoadError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("load %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Path, e.Format, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Load reads a single source.
func Load(ctx context.Context, path string) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	var res *Result
	if format == FormatSQLite {
		res, err = loadSQLite(ctx, path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			res, err = decode(format, data)
		}
	}
	if err != nil {
		return nil, &LoadError{Path: path, Format: format, Cause: err}
	}
	return res, nil
}

// LoadAll reads every source concurrently and merges them in the given
// order. The first failure cancels the rest.
func LoadAll(ctx context.Context, paths []string) (*Result, error) {
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			res, err := Load(ctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Result{}
	for _, res := range results {
		merged.Merge(res)
	}
	return merged, nil
}

func decode(format Format, data []byte) (*Result, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatJSONL:
		return decodeJSONL(data)
	case FormatYAML:
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("no decoder for %s", format)
}

func decodeJSON(data []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Result{}, nil
	}

	if trimmed[0] == '[' {
		var records []model.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return fromDocument(Document{Records: records}), nil
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fromDocument(doc), nil
}

// decodeJSONL skips malformed lines instead of failing the whole source.
func decodeJSONL(data []byte) (*Result, error) {
	res := &Result{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var r model.Record
		if err := json.Unmarshal(line, &r); err != nil {
			log.Printf("warning: skipping malformed line %d: %v", lineNum, err)
			res.Skipped++
			continue
		}
		res.addRecord(r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return res, nil
}

func decodeYAML(data []byte) (*Result, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return &Result{}, nil
	}

	body := root.Content[0]
	if body.Kind == yaml.SequenceNode {
		var records []model.Record
		if err := body.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return fromDocument(Document{Records: records}), nil
	}

	var doc Document
	if err := body.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fromDocument(doc), nil
}

func fromDocument(doc Document) *Result {
	res := &Result{}
	for _, r := range doc.Records {
		res.addRecord(r)
	}
	for _, r := range model.Records(authoredOrder(doc.Menus)) {
		res.addRecord(r)
	}
	for _, u := range doc.Units {
		if err := u.Validate(); err != nil {
			log.Printf("warning: skipping business unit: %v", err)
			res.Skipped++
			continue
		}
		res.Units = append(res.Units, u)
	}
	return res
}

// authoredOrder numbers siblings by document position when none of them set
// one, so rebuilding the forest from records keeps the order they were
// written in. The input is not modified.
func authoredOrder(menus []model.Menu) []model.Menu {
	if len(menus) == 0 {
		return menus
	}
	out := make([]model.Menu, len(menus))
	copy(out, menus)

	numbered := false
	for _, m := range out {
		if m.Position != 0 {
			numbered = true
			break
		}
	}
	for i := range out {
		if !numbered {
			out[i].Position = i + 1
		}
		out[i].Children = authoredOrder(out[i].Children)
	}
	return out
}

func (res *Result) addRecord(r model.Record) {
	if err := r.Validate(); err != nil {
		log.Printf("warning: skipping record: %v", err)
		res.Skipped++
		return
	}
	res.Records = append(res.Records, r)
}
