package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"feeledger/internal/config"
	"feeledger/internal/sheets/memory"
	"feeledger/internal/sheets/xlsx"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    Type
		wantErr bool
	}{
		{name: "file", backend: "file", want: FileBackend},
		{name: "memory", backend: "memory", want: MemoryBackend},
		{name: "sheets", backend: "sheets", want: SheetsBackend},
		{name: "unknown", backend: "excel", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromAppConfig(&config.Config{ExportBackend: tt.backend, GoogleSheetName: "Fees"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Type != tt.want {
				t.Errorf("FromAppConfig() type = %v, want %v", cfg.Type, tt.want)
			}
		})
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		errorString string
	}{
		{name: "memory", cfg: Config{Type: MemoryBackend}},
		{name: "file", cfg: Config{Type: FileBackend, FilePath: "fees.xlsx", FileSheet: "Fees"}},
		{name: "file without path", cfg: Config{Type: FileBackend, FileSheet: "Fees"}, errorString: "file path is required"},
		{name: "sheets", cfg: Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleSheetName: "Fees"}},
		{name: "sheets without id", cfg: Config{Type: SheetsBackend, GoogleSheetName: "Fees"}, errorString: "Spreadsheet ID is required"},
		{name: "sheets without name", cfg: Config{Type: SheetsBackend, GoogleSpreadsheetID: "id"}, errorString: "Sheet name is required"},
		{name: "empty type", cfg: Config{}, errorString: "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("Validate() error = %v, want substring %q", err, tt.errorString)
			}
		})
	}
}

func TestCreateRowStore_Memory(t *testing.T) {
	store, err := NewFactory(nil).CreateRowStore(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateRowStore: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected *memory.Store, got %T", store)
	}
}

func TestCreateRowStore_InvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateRowStore(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Fatal("expected error for sheets backend without spreadsheet ID")
	}
}

func TestCreateRowStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.xlsx")
	store, err := NewFactory(nil).CreateRowStore(context.Background(), Config{Type: FileBackend, FilePath: path, FileSheet: "Fees"})
	if err != nil {
		t.Fatalf("CreateRowStore: %v", err)
	}
	x, ok := store.(*xlsx.Store)
	if !ok {
		t.Fatalf("expected *xlsx.Store, got %T", store)
	}
	if x.Path() != path {
		t.Errorf("path = %q, want %q", x.Path(), path)
	}
}

func TestType_Persistent(t *testing.T) {
	for _, typ := range Types() {
		want := typ != MemoryBackend
		if got := typ.Persistent(); got != want {
			t.Errorf("%s.Persistent() = %v, want %v", typ, got, want)
		}
	}
}
