// Command liftc is the CLI tool for the LIFT curation engine.
// It provides commands for parsing, normalizing, editing, and storing
// LIFT lexicon documents.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/openlexica/liftcurator/core/lift"
	"github.com/openlexica/liftcurator/core/model"
	"github.com/openlexica/liftcurator/core/query"
	"github.com/openlexica/liftcurator/internal/fileutil"
	"github.com/openlexica/liftcurator/internal/logging"
	"github.com/openlexica/liftcurator/internal/store"
)

const version = "0.1.0"

// CLI defines the command-line interface for liftc.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format"`

	// Command groups (noun-first organization)
	Parse   ParseCmd   `cmd:"" help:"Parse a LIFT document and report its contents"`
	Convert ConvertCmd `cmd:"" help:"Rewrite a LIFT document with namespaced output"`
	Fmt     FmtCmd     `cmd:"" help:"Pretty-print a LIFT document without reinterpreting it"`
	Check   CheckCmd   `cmd:"" help:"Check a document for XML well-formedness"`
	Query   QueryCmd   `cmd:"" help:"Filter entries with a query expression"`
	XPath   XPathCmd   `cmd:"" help:"Run an XPath expression against a document"`
	Entry   EntryGroup `cmd:"" help:"Entry editing operations"`
	Store   StoreGroup `cmd:"" help:"Document store operations"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// EntryGroup contains entry editing operations.
type EntryGroup struct {
	MoveSense   MoveSenseCmd   `cmd:"" name:"move-sense" help:"Move a sense to a new position within its entry"`
	DeleteSense DeleteSenseCmd `cmd:"" name:"delete-sense" help:"Delete a sense from an entry"`
}

// StoreGroup contains document store operations.
type StoreGroup struct {
	DB string `name:"db" default:"lexicon.db" help:"Path to the store database" type:"path"`

	Put    StorePutCmd    `cmd:"" help:"Store a document"`
	Get    StoreGetCmd    `cmd:"" help:"Retrieve a stored document"`
	List   StoreListCmd   `cmd:"" help:"List stored documents"`
	Delete StoreDeleteCmd `cmd:"" help:"Delete a stored document"`
	Search StoreSearchCmd `cmd:"" help:"Search stored documents with a query expression"`
}

// ParseCmd parses a document and reports entries, warnings, and failures.
type ParseCmd struct {
	Path string `arg:"" help:"Path to LIFT document (- for stdin)"`
	JSON bool   `help:"Emit the parse result as JSON"`
}

func (c *ParseCmd) Run() error {
	data, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return err
	}

	result, err := lift.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.Path, err)
	}

	for _, w := range result.Warnings {
		logging.ParseWarning(w.EntryID, w.Message)
	}
	logging.ParseSummary(c.Path, len(result.Entries), len(result.Warnings), len(result.Failures))

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Document: %s\n", c.Path)
	fmt.Printf("  Convention: %s\n", result.Mode)
	fmt.Printf("  Entries: %d\n", len(result.Entries))
	for _, e := range result.Entries {
		fmt.Printf("    %s  %s  (%d senses)\n", e.ID, headword(e), len(e.Senses))
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("  Warnings: %d\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("    [warn] %s\n", w.Message)
		}
	}
	if len(result.Failures) > 0 {
		fmt.Printf("  Failures: %d\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("    [fail] %s\n", f.Message)
		}
	}
	return nil
}

// ConvertCmd re-serializes a document, normalizing it to the namespaced
// convention. Bare input comes out prefixed; entries that fail to parse
// are dropped with a warning.
type ConvertCmd struct {
	Path  string `arg:"" help:"Path to LIFT document (- for stdin)"`
	Out   string `required:"" help:"Output path (- for stdout)" type:"path"`
	Touch bool   `help:"Stamp dateModified with the current time"`
}

func (c *ConvertCmd) Run() error {
	data, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return err
	}

	result, err := lift.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.Path, err)
	}
	for _, f := range result.Failures {
		logging.Warn("dropping unparseable entry", "entry", f.EntryID, "error", f.Message)
	}

	opts := lift.SerializeOptions{}
	if c.Touch {
		opts.Now = time.Now().UTC()
	}
	out, err := lift.Serialize(result.Entries, opts)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	return fileutil.WriteDocument(c.Out, out)
}

// FmtCmd pretty-prints a document. Unlike convert, fmt never reinterprets
// the content: element names and namespace conventions pass through.
type FmtCmd struct {
	Path   string `arg:"" help:"Path to LIFT document (- for stdin)"`
	Out    string `help:"Output path (defaults to stdout)" type:"path"`
	Indent string `default:"  " help:"Indentation unit"`
}

func (c *FmtCmd) Run() error {
	data, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return err
	}

	out, err := lift.Format(data, lift.FormatOptions{Indent: c.Indent})
	if err != nil {
		return fmt.Errorf("format %s: %w", c.Path, err)
	}

	dst := c.Out
	if dst == "" {
		dst = "-"
	}
	return fileutil.WriteDocument(dst, out)
}

// CheckCmd checks XML well-formedness without interpreting the content.
type CheckCmd struct {
	Paths []string `arg:"" help:"Paths to check"`
}

func (c *CheckCmd) Run() error {
	failed := 0
	for _, path := range c.Paths {
		data, err := fileutil.ReadDocument(path)
		if err != nil {
			fmt.Printf("[FAIL] %s: %v\n", path, err)
			failed++
			continue
		}
		if err := lift.CheckWellFormed(data); err != nil {
			fmt.Printf("[FAIL] %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("[OK]   %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed the check", failed, len(c.Paths))
	}
	return nil
}

// QueryCmd filters a document's entries with a query expression.
type QueryCmd struct {
	Path string `arg:"" help:"Path to LIFT document (- for stdin)"`
	Expr string `arg:"" help:"Query expression (e.g. 'lexeme contains \"run\" and lang = \"en\"')"`
	JSON bool   `help:"Emit matching entries as JSON"`
}

func (c *QueryCmd) Run() error {
	q, err := query.Parse(c.Expr)
	if err != nil {
		return fmt.Errorf("bad query: %w", err)
	}

	data, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return err
	}
	result, err := lift.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.Path, err)
	}

	var matched []*model.Entry
	for _, e := range result.Entries {
		if q.Match(e) {
			matched = append(matched, e)
		}
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matched)
	}
	for _, e := range matched {
		fmt.Printf("%s\t%s\n", e.ID, headword(e))
	}
	fmt.Fprintf(os.Stderr, "%d of %d entries matched\n", len(matched), len(result.Entries))
	return nil
}

// XPathCmd evaluates an XPath expression against the raw document.
type XPathCmd struct {
	Path string `arg:"" help:"Path to LIFT document (- for stdin)"`
	Expr string `arg:"" help:"XPath expression (use local-name() to span conventions)"`
	Text bool   `help:"Print inner text instead of outer XML"`
}

func (c *XPathCmd) Run() error {
	data, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return err
	}
	doc, err := lift.LoadDocument(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.Path, err)
	}

	nodes, err := doc.XPath(c.Expr)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if c.Text {
			fmt.Println(n.InnerText())
		} else {
			fmt.Println(n.OuterXML())
		}
	}
	fmt.Fprintf(os.Stderr, "%d nodes\n", len(nodes))
	return nil
}

// MoveSenseCmd moves a sense within its entry and rewrites the document.
type MoveSenseCmd struct {
	Path  string `arg:"" help:"Path to LIFT document"`
	Entry string `required:"" help:"Entry id"`
	Sense string `required:"" help:"Sense id"`
	To    int    `required:"" help:"New zero-based position"`
	Out   string `help:"Output path (defaults to in-place)" type:"path"`
}

func (c *MoveSenseCmd) Run() error {
	return editEntry(c.Path, c.Out, c.Entry, func(e *model.Entry) error {
		return e.MoveSense(c.Sense, c.To)
	})
}

// DeleteSenseCmd deletes a sense from an entry and rewrites the document.
type DeleteSenseCmd struct {
	Path  string `arg:"" help:"Path to LIFT document"`
	Entry string `required:"" help:"Entry id"`
	Sense string `required:"" help:"Sense id"`
	Out   string `help:"Output path (defaults to in-place)" type:"path"`
}

func (c *DeleteSenseCmd) Run() error {
	return editEntry(c.Path, c.Out, c.Entry, func(e *model.Entry) error {
		return e.DeleteSense(c.Sense)
	})
}

// editEntry loads a document, applies an edit to one entry, and writes
// the whole document back with the edit time stamped on every entry.
func editEntry(path, out, entryID string, edit func(*model.Entry) error) error {
	data, err := fileutil.ReadDocument(path)
	if err != nil {
		return err
	}
	result, err := lift.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(result.Failures) > 0 {
		return fmt.Errorf("refusing to edit %s: %d entries failed to parse", path, len(result.Failures))
	}

	var target *model.Entry
	for _, e := range result.Entries {
		if e.ID == entryID {
			target = e
			break
		}
	}
	if target == nil {
		return fmt.Errorf("entry %q not found in %s", entryID, path)
	}
	if err := edit(target); err != nil {
		return err
	}

	serialized, err := lift.Serialize(result.Entries, lift.SerializeOptions{Now: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	if out == "" {
		out = path
	}
	return fileutil.WriteDocument(out, serialized)
}

// StorePutCmd stores a document under an id.
type StorePutCmd struct {
	ID   string `arg:"" help:"Document id"`
	Path string `arg:"" help:"Path to LIFT document (- for stdin)"`
}

func (c *StorePutCmd) Run(g *StoreGroup) error {
	data, err := fileutil.ReadDocument(c.Path)
	if err != nil {
		return err
	}
	// Reject documents the engine cannot read back.
	if _, err := lift.ParseDocument(data); err != nil {
		return fmt.Errorf("refusing to store %s: %w", c.Path, err)
	}

	s, err := store.Open(g.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Put(context.Background(), c.ID, data); err != nil {
		return err
	}
	fmt.Printf("Stored: %s (%d bytes, %s)\n", c.ID, len(data), store.ContentHash(data)[:12])
	return nil
}

// StoreGetCmd retrieves a stored document.
type StoreGetCmd struct {
	ID  string `arg:"" help:"Document id"`
	Out string `help:"Output path (defaults to stdout)" type:"path"`
}

func (c *StoreGetCmd) Run(g *StoreGroup) error {
	s, err := store.Open(g.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.Get(context.Background(), c.ID)
	if err != nil {
		return err
	}
	dst := c.Out
	if dst == "" {
		dst = "-"
	}
	return fileutil.WriteDocument(dst, data)
}

// StoreListCmd lists stored documents.
type StoreListCmd struct{}

func (c *StoreListCmd) Run(g *StoreGroup) error {
	s, err := store.Open(g.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	infos, err := s.List(context.Background())
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("%s\t%d bytes\t%s\t%s\n", info.ID, info.Size, info.Hash[:12], info.UpdatedAt)
	}
	fmt.Fprintf(os.Stderr, "%d documents (%s driver)\n", len(infos), store.DriverType())
	return nil
}

// StoreDeleteCmd deletes a stored document.
type StoreDeleteCmd struct {
	ID string `arg:"" help:"Document id"`
}

func (c *StoreDeleteCmd) Run(g *StoreGroup) error {
	s, err := store.Open(g.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(context.Background(), c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted: %s\n", c.ID)
	return nil
}

// StoreSearchCmd searches every stored document with a query expression.
type StoreSearchCmd struct {
	Expr string `arg:"" help:"Query expression"`
}

func (c *StoreSearchCmd) Run(g *StoreGroup) error {
	q, err := query.Parse(c.Expr)
	if err != nil {
		return fmt.Errorf("bad query: %w", err)
	}

	s, err := store.Open(g.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Search(context.Background(), q)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\n", r.DocumentID, r.Entry.ID, headword(r.Entry))
	}
	fmt.Fprintf(os.Stderr, "%d entries matched\n", len(results))
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("liftc %s (LIFT %s, store driver %s)\n", version, lift.Version, store.DriverType())
	return nil
}

// headword is the display form of an entry: the first lexical-unit form.
func headword(e *model.Entry) string {
	if e.LexicalUnit == nil {
		return ""
	}
	for _, f := range e.LexicalUnit.Entries() {
		return f.Text
	}
	return ""
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("liftc"),
		kong.Description("LIFT lexicon curation engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	format := logging.FormatText
	if strings.EqualFold(CLI.LogFormat, "json") {
		format = logging.FormatJSON
	}
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), format)

	err := ctx.Run(&CLI.Store)
	ctx.FatalIfErrorf(err)
}
