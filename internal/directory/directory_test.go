package directory

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const sampleDirectory = `{
  // Attendance directory for tests. JSON5 comments are allowed.
  "organizations": [
    {
      "code": "trf3",
      "name": "TRF3",
      "units": [
        {"code": "balcao", "name": "Balcão TRF3", "schedule": "segunda a sexta, 10h às 17h"}
      ],
      "keywords": {"balcao": ["trf3", "federal"]}
    },
    {
      "code": "tjsp",
      "name": "TJSP",
      "units": [
        {"code": "vara1", "name": "1ª Vara Cível", "schedule": "segunda a sexta, 9h às 18h"},
        {"code": "vara2", "name": "2ª Vara Cível", "schedule": "segunda a sexta, 9h às 18h"}
      ],
      "keywords": {
        "vara1": ["primeira vara"],
        "vara2": ["segunda vara"]
      }
    }
  ]
}`

func writeDirectory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "directory.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	d, err := Load(writeDirectory(t, sampleDirectory))
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty organizations", `{"organizations": []}`},
		{"missing code", `{"organizations": [{"name": "TJSP"}]}`},
		{"missing name", `{"organizations": [{"code": "tjsp"}]}`},
		{"not json", `<<nope>>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeDirectory(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestMatch(t *testing.T) {
	d, err := Load(writeDirectory(t, sampleDirectory))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		text     string
		wantUnit string
		wantOK   bool
	}{
		{"quero atendimento no TRF3", "balcao", true},
		{"falar com a PRIMEIRA VARA por favor", "vara1", true},
		{"a segunda vara cível", "vara2", true},
		{"nenhum tribunal citado", "", false},
	}
	for _, tt := range tests {
		m, ok := d.Match(tt.text)
		if ok != tt.wantOK {
			t.Errorf("Match(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			continue
		}
		if ok && m.Unit.Code != tt.wantUnit {
			t.Errorf("Match(%q) unit = %q, want %q", tt.text, m.Unit.Code, tt.wantUnit)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	d, err := Load(writeDirectory(t, sampleDirectory))
	if err != nil {
		t.Fatal(err)
	}

	names := d.Names()
	if len(names) != 2 {
		t.Fatalf("Names() = %v", names)
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
}
