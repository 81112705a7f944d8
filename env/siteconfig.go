package env

import (
	"os"

	yaml "gopkg.in/yaml.v2"
)

// MagicWord is one entry of the site's magic-word table, consulted by the
// meta handler (§4.5 step 2) for page-property round-tripping.
type MagicWord struct {
	// Aliases are the canonical source forms, most-preferred first
	// (e.g. "__NOTOC__", "__notoc__").
	Aliases []string
}

// SiteConfig is the read-only, dependency-injected site configuration of
// §6 ("site config (magic words, LCNameMap source of truth)"): magic-word
// canonical forms, the page-prop masquerade set, and the language-variant
// flag name map. The serializer's element-name tables are not part of it;
// they are fixed package variables in xmlserial. A default is embedded; an optional YAML
// override file can replace or extend it (§"Domain stack": config reuses
// yaml.v2, already a transitive dependency of this module's origin).
type SiteConfig struct {
	// MagicWords maps a page-prop key (e.g. "defaultsort") to its magic
	// word entry.
	MagicWords map[string]MagicWord

	// MagicMasqSet is the subset of page-prop keys handled by the
	// "{{UPPER(X):content}}"-style template form rather than the generic
	// magic-word table (§4.5 step 2).
	MagicMasqSet map[string]bool

	// LCNameMap is the fixed language-variant flag name map (§4.6 step 3).
	LCNameMap map[string]string
}

// DefaultSiteConfig returns the built-in configuration: the LCNameMap is a
// fixed domain constant (§4.6 step 3) and is never user-overridable; the
// magic-word table carries a representative default set sufficient for the
// meta handler's page-prop cases.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		MagicWords: map[string]MagicWord{
			"notoc":          {Aliases: []string{"__NOTOC__"}},
			"noeditsection":  {Aliases: []string{"__NOEDITSECTION__"}},
			"forcetoc":       {Aliases: []string{"__FORCETOC__"}},
			"nogallery":      {Aliases: []string{"__NOGALLERY__"}},
			"hiddencat":      {Aliases: []string{"__HIDDENCAT__"}},
			"index":          {Aliases: []string{"__INDEX__"}},
			"noindex":        {Aliases: []string{"__NOINDEX__"}},
			"staticredirect": {Aliases: []string{"__STATICREDIRECT__"}},
		},
		MagicMasqSet: map[string]bool{
			"defaultsort":        true,
			"displaytitle":       true,
			"categorydefaultsort": true,
		},
		LCNameMap: map[string]string{
			"describe":  "D",
			"add":       "A",
			"hidden":    "H",
			"showflag":  "$S",
			"title":     "T",
			"remove":    "R",
			"-":         "-",
		},
	}
}

// overrideFile is the optional YAML shape layered on top of the default
// (magic words and the masquerade set only — LCNameMap is fixed).
type overrideFile struct {
	MagicWords   map[string][]string `yaml:"magicWords"`
	MagicMasqSet []string            `yaml:"magicMasqSet"`
}

// LoadSiteConfig reads an optional YAML override file at path and merges it
// onto DefaultSiteConfig. A missing file is not an error: the default is
// returned unchanged.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	cfg := DefaultSiteConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	var ov overrideFile
	if err := yaml.Unmarshal(b, &ov); err != nil {
		return nil, err
	}
	for key, aliases := range ov.MagicWords {
		cfg.MagicWords[key] = MagicWord{Aliases: aliases}
	}
	for _, key := range ov.MagicMasqSet {
		cfg.MagicMasqSet[key] = true
	}
	return cfg, nil
}
