// Package directory holds the organization directory: the tribunals a
// conversation can be handed off to, each with per-unit trigger keywords and
// attendance schedules. Loaded once at startup from a JSON5 file; a missing
// or unparsable file is fatal. Read-only afterwards, except for hot reload.
package directory

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/titanous/json5"
)

// Unit is one attendance unit inside an organization (a vara, secretaria or
// service desk) with its display name and schedule.
type Unit struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Schedule string `json:"schedule"` // e.g. "segunda a sexta, 9h às 18h"
}

// Organization is one directory record.
type Organization struct {
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Units    []Unit              `json:"units"`
	Keywords map[string][]string `json:"keywords"` // unit code → trigger keywords (substring match)
}

// Match is the result of resolving free text against the directory.
type Match struct {
	Org  Organization
	Unit Unit
}

// Directory is the loaded, concurrency-safe organization table.
type Directory struct {
	mu   sync.RWMutex
	path string
	orgs []Organization
}

// Load reads the directory file. Startup should treat an error as fatal.
func Load(path string) (*Directory, error) {
	d := &Directory{path: path}
	if err := d.reload(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) reload() error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("read directory file: %w", err)
	}

	var file struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := json5.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse directory file %s: %w", d.path, err)
	}
	if len(file.Organizations) == 0 {
		return fmt.Errorf("directory file %s: no organizations", d.path)
	}

	for _, org := range file.Organizations {
		if org.Code == "" || org.Name == "" {
			return fmt.Errorf("directory file %s: organization missing code or name", d.path)
		}
	}

	d.mu.Lock()
	d.orgs = file.Organizations
	d.mu.Unlock()
	return nil
}

// Match resolves free text to an organization unit via the keyword tables.
// Keywords match as lowercased substrings. The first matching unit in
// directory order wins.
func (d *Directory) Match(text string) (Match, bool) {
	lower := strings.ToLower(text)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, org := range d.orgs {
		for _, unit := range org.Units {
			for _, kw := range org.Keywords[unit.Code] {
				if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
					return Match{Org: org, Unit: unit}, true
				}
			}
		}
	}
	return Match{}, false
}

// Names returns the organization display names, sorted, for listing in a
// selection prompt.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.orgs))
	for _, org := range d.orgs {
		names = append(names, org.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of organizations.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.orgs)
}
