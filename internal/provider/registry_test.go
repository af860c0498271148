package provider

import (
	"strings"
	"testing"

	"mangadventure/internal/site"
)

func TestRegistryFromBuiltin(t *testing.T) {
	r, err := NewRegistryFromSites(site.Builtin())
	if err != nil {
		t.Fatalf("NewRegistryFromSites() error = %v", err)
	}
	defer r.Close()

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(all))
	}
	if all[0].Info().Name != "Arc-Relight" {
		t.Errorf("All()[0] = %q, want Arc-Relight", all[0].Info().Name)
	}

	for _, name := range []string{"Helvetica Scans", "helveticascans", "helvetica-scans"} {
		p, err := r.Get(name)
		if err != nil {
			t.Errorf("Get(%q) error = %v", name, err)
			continue
		}
		if p.Info().Name != "Helvetica Scans" {
			t.Errorf("Get(%q) = %q", name, p.Info().Name)
		}
	}
}

func TestRegistryUnknownSite(t *testing.T) {
	r, err := NewRegistryFromSites(site.Builtin())
	if err != nil {
		t.Fatalf("NewRegistryFromSites() error = %v", err)
	}
	defer r.Close()

	_, err = r.Get("nowhere")
	if err == nil {
		t.Fatal("expected error for unknown site")
	}
	if !strings.Contains(err.Error(), "Arc-Relight") {
		t.Errorf("error should list available sites, got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	sites := []site.Site{
		{Name: "Helvetica Scans", BaseURL: "https://helveticascans.com"},
		{Name: "helvetica_scans", BaseURL: "https://mirror.example.com"},
	}
	for i := range sites {
		sites[i] = sites[i].WithDefaults()
	}
	if _, err := NewRegistryFromSites(sites); err == nil {
		t.Fatal("expected duplicate site error")
	}
}

func TestRegistryRejectsInvalidSite(t *testing.T) {
	sites := []site.Site{site.Site{Name: "Plain", BaseURL: "http://example.com"}.WithDefaults()}
	if _, err := NewRegistryFromSites(sites); err == nil {
		t.Fatal("expected validation error")
	}
}
