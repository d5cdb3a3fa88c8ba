package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openlexica/liftcurator/core/lift"
)

const bareFixture = `<lift version="0.13">
  <entry id="run_1">
    <lexical-unit><form lang="en"><text>run</text></form></lexical-unit>
    <sense id="s-move"><gloss lang="en"><text>move fast</text></gloss></sense>
    <sense id="s-manage"><gloss lang="en"><text>manage</text></gloss></sense>
  </entry>
</lift>`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestConvertCmd_Run(t *testing.T) {
	src := writeFixture(t, "bare.lift", bareFixture)
	out := filepath.Join(filepath.Dir(src), "out.lift")

	cmd := &ConvertCmd{Path: src, Out: out}
	if err := cmd.Run(); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "<lift:entry") {
		t.Error("converted output not namespace-prefixed")
	}

	result, err := lift.ParseDocument(data)
	if err != nil {
		t.Fatalf("converted output does not parse: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].ID != "run_1" {
		t.Errorf("converted output lost the entry")
	}
}

func TestConvertCmd_Run_BadInput(t *testing.T) {
	src := writeFixture(t, "bad.lift", "<notlift/>")
	cmd := &ConvertCmd{Path: src, Out: filepath.Join(filepath.Dir(src), "out.lift")}
	if err := cmd.Run(); err == nil {
		t.Error("expected error for non-LIFT input")
	}
}

func TestCheckCmd_Run(t *testing.T) {
	good := writeFixture(t, "good.lift", bareFixture)
	if err := (&CheckCmd{Paths: []string{good}}).Run(); err != nil {
		t.Errorf("check of well-formed document failed: %v", err)
	}

	bad := writeFixture(t, "bad.lift", "<lift><entry></lift>")
	if err := (&CheckCmd{Paths: []string{bad}}).Run(); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestMoveSenseCmd_Run(t *testing.T) {
	src := writeFixture(t, "dict.lift", bareFixture)

	cmd := &MoveSenseCmd{Path: src, Entry: "run_1", Sense: "s-manage", To: 0}
	if err := cmd.Run(); err != nil {
		t.Fatalf("move-sense failed: %v", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	result, err := lift.ParseDocument(data)
	if err != nil {
		t.Fatalf("edited document does not parse: %v", err)
	}
	senses := result.Entries[0].Senses
	if len(senses) != 2 || senses[0].ID != "s-manage" || senses[1].ID != "s-move" {
		t.Errorf("sense order after move = [%s %s]", senses[0].ID, senses[1].ID)
	}
	if senses[0].Order != 0 || senses[1].Order != 1 {
		t.Errorf("orders not renumbered: %d, %d", senses[0].Order, senses[1].Order)
	}
}

func TestMoveSenseCmd_Run_UnknownEntry(t *testing.T) {
	src := writeFixture(t, "dict.lift", bareFixture)
	cmd := &MoveSenseCmd{Path: src, Entry: "ghost_1", Sense: "s-move", To: 0}
	if err := cmd.Run(); err == nil {
		t.Error("expected error for unknown entry")
	}
}

func TestDeleteSenseCmd_Run(t *testing.T) {
	src := writeFixture(t, "dict.lift", bareFixture)
	out := filepath.Join(filepath.Dir(src), "edited.lift")

	cmd := &DeleteSenseCmd{Path: src, Entry: "run_1", Sense: "s-move", Out: out}
	if err := cmd.Run(); err != nil {
		t.Fatalf("delete-sense failed: %v", err)
	}

	// Original untouched when --out is given
	orig, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(orig) != bareFixture {
		t.Error("source document modified despite --out")
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	result, err := lift.ParseDocument(data)
	if err != nil {
		t.Fatalf("edited document does not parse: %v", err)
	}
	senses := result.Entries[0].Senses
	if len(senses) != 1 || senses[0].ID != "s-manage" || senses[0].Order != 0 {
		t.Errorf("senses after delete = %+v", senses)
	}
}

func TestStorePutGetCmd_Run(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "dict.lift")
	if err := os.WriteFile(src, []byte(bareFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	group := &StoreGroup{DB: filepath.Join(tempDir, "lexicon.db")}

	put := &StorePutCmd{ID: "main", Path: src}
	if err := put.Run(group); err != nil {
		t.Fatalf("store put failed: %v", err)
	}

	out := filepath.Join(tempDir, "roundtrip.lift")
	get := &StoreGetCmd{ID: "main", Out: out}
	if err := get.Run(group); err != nil {
		t.Fatalf("store get failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != bareFixture {
		t.Error("stored document corrupted")
	}

	del := &StoreDeleteCmd{ID: "main"}
	if err := del.Run(group); err != nil {
		t.Fatalf("store delete failed: %v", err)
	}
	if err := get.Run(group); err == nil {
		t.Error("expected error retrieving deleted document")
	}
}

func TestStorePutCmd_Run_RejectsBadDocument(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "bad.lift")
	if err := os.WriteFile(src, []byte("<notlift/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	group := &StoreGroup{DB: filepath.Join(tempDir, "lexicon.db")}
	if err := (&StorePutCmd{ID: "bad", Path: src}).Run(group); err == nil {
		t.Error("expected error storing non-LIFT document")
	}
}
