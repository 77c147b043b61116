package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testdataPath(t *testing.T, name string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "..", "testdata", "catalog", name))
	if err != nil {
		t.Fatalf("failed to resolve testdata path: %v", err)
	}
	return p
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Builtin
// ---------------------------------------------------------------------------

func Test_Builtin_OrderAndContent(t *testing.T) {
	targets := Builtin()

	want := []string{"Bellatrix", "Alnilam", "Alnitak", "Saiph"}
	if got := Names(targets); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names(Builtin()) = %v, want %v", got, want)
	}

	b := targets[0]
	if b.RA.HMS != "05:25:07.863" || b.Dec.DMS != "06:20:58.93" {
		t.Errorf("Bellatrix coordinates = %q %q", b.RA.HMS, b.Dec.DMS)
	}
	if b.ProperMotion.Dec.MilliarcsecondsPerYear != -12.88 {
		t.Errorf("Bellatrix pm dec = %v, want -12.88", b.ProperMotion.Dec.MilliarcsecondsPerYear)
	}
	if b.RadialVelocity.MetersPerSecond != 18287 {
		t.Errorf("Bellatrix rv = %v, want 18287", b.RadialVelocity.MetersPerSecond)
	}

	for _, tg := range targets {
		if err := Validate(tg); err != nil {
			t.Errorf("builtin target %s invalid: %v", tg.Name, err)
		}
		if tg.Epoch != "J2000.000" {
			t.Errorf("%s epoch = %q, want J2000.000", tg.Name, tg.Epoch)
		}
		if len(tg.Magnitudes) != 2 {
			t.Errorf("%s has %d magnitudes, want 2", tg.Name, len(tg.Magnitudes))
		}
		if len(tg.ProgramIDs) != 0 {
			t.Errorf("%s ProgramIDs = %v, want none", tg.Name, tg.ProgramIDs)
		}
	}
}

func Test_Builtin_ReturnsIndependentCopies(t *testing.T) {
	a := Builtin()
	a[0].Name = "Mutated"
	a[0].Magnitudes[0].Value = 99
	a[1].ProgramIDs = append(a[1].ProgramIDs, "p-1")

	b := Builtin()
	if b[0].Name != "Bellatrix" {
		t.Errorf("Builtin()[0].Name = %q after caller mutation", b[0].Name)
	}
	if b[0].Magnitudes[0].Value != 1.73 {
		t.Errorf("Builtin()[0].Magnitudes[0].Value = %v after caller mutation", b[0].Magnitudes[0].Value)
	}
	if len(b[1].ProgramIDs) != 0 {
		t.Errorf("Builtin()[1].ProgramIDs = %v after caller mutation", b[1].ProgramIDs)
	}
}

// ---------------------------------------------------------------------------
// LoadFile
// ---------------------------------------------------------------------------

func Test_LoadFile_Valid(t *testing.T) {
	targets, err := LoadFile(testdataPath(t, "winter.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got := Names(targets); !reflect.DeepEqual(got, []string{"Betelgeuse", "Rigel"}) {
		t.Fatalf("Names = %v", got)
	}

	r := targets[1]
	if r.Dec.DMS != "-08:12:05.90" {
		t.Errorf("Rigel dec = %q", r.Dec.DMS)
	}
	if r.Parallax.Milliarcseconds != 3.78 {
		t.Errorf("Rigel parallax = %v", r.Parallax.Milliarcseconds)
	}
	if len(r.Magnitudes) != 2 || r.Magnitudes[1].Band != "V" {
		t.Errorf("Rigel magnitudes = %+v", r.Magnitudes)
	}
}

func Test_LoadFile_Errors(t *testing.T) {
	tests := []struct {
		name        string
		path        func(t *testing.T) string
		errContains string
		errIs       error
	}{
		{
			name:        "missing file",
			path:        func(t *testing.T) string { return "/nonexistent/catalog.yaml" },
			errContains: "no such file",
		},
		{
			name:        "malformed yaml",
			path:        func(t *testing.T) string { return writeCatalog(t, "targets: [\n") },
			errContains: "parse",
		},
		{
			name:  "empty target list",
			path:  func(t *testing.T) string { return writeCatalog(t, "targets: []\n") },
			errIs: ErrEmptyCatalog,
		},
		{
			name: "target without ra",
			path: func(t *testing.T) string {
				return writeCatalog(t, "targets:\n  - name: Vega\n    dec: { dms: \"38:47:01.28\" }\n")
			},
			errContains: "ra.hms is required",
		},
		{
			name: "duplicate names",
			path: func(t *testing.T) string {
				return writeCatalog(t, `targets:
  - { name: Vega, ra: { hms: "18:36:56.3" }, dec: { dms: "38:47:01.28" } }
  - { name: Vega, ra: { hms: "18:36:56.3" }, dec: { dms: "38:47:01.28" } }
`)
			},
			errContains: "duplicate target name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, err := LoadFile(tt.path(t))
			if err == nil {
				t.Fatalf("expected error, got %d targets", len(targets))
			}
			if tt.errIs != nil && !errors.Is(err, tt.errIs) {
				t.Errorf("error = %v, want errors.Is %v", err, tt.errIs)
			}
			if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Validate, Find, Select
// ---------------------------------------------------------------------------

func Test_Validate_Cases(t *testing.T) {
	good := Builtin()[0]

	tests := []struct {
		name    string
		mutate  func(t *Target)
		wantErr bool
	}{
		{name: "complete target", mutate: func(t *Target) {}},
		{name: "no name", mutate: func(t *Target) { t.Name = "" }, wantErr: true},
		{name: "no dec", mutate: func(t *Target) { t.Dec.DMS = "" }, wantErr: true},
		{name: "magnitude without band", mutate: func(t *Target) { t.Magnitudes[0].Band = "" }, wantErr: true},
		{name: "no magnitudes", mutate: func(t *Target) { t.Magnitudes = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := good.Clone()
			tt.mutate(&tg)
			err := Validate(tg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_Find(t *testing.T) {
	targets := Builtin()

	got, ok := Find(targets, "Alnitak")
	if !ok {
		t.Fatal("Find(Alnitak) not found")
	}
	if got.RA.HMS != "05:40:45.527" {
		t.Errorf("Alnitak ra = %q", got.RA.HMS)
	}

	if _, ok := Find(targets, "Sirius"); ok {
		t.Error("Find(Sirius) = found, want not found")
	}
}

func Test_Select_PreservesOrder(t *testing.T) {
	got := Select(Builtin(), func(name string) bool { return strings.HasPrefix(name, "Al") })
	want := []string{"Alnilam", "Alnitak"}
	if names := Names(got); !reflect.DeepEqual(names, want) {
		t.Errorf("Select() names = %v, want %v", names, want)
	}
}
