package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Taxonomy holds the choice lists offered by the entry forms.
type Taxonomy struct {
	Categories []string `yaml:"categories"`
	Payments   []string `yaml:"payments"`
	Users      []string `yaml:"users"`
}

// DefaultTaxonomy returns the built-in household lists.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: []string{"餐飲", "交通", "生活", "娛樂", "醫療", "教育", "其他"},
		Payments:   []string{"現金", "信用卡", "轉帳", "行動支付", "其他"},
		Users:      []string{"Rick", "Karen", "Max", "Mic"},
	}
}

// LoadTaxonomy reads a YAML taxonomy file. An empty path returns the defaults;
// lists missing from the file keep their default values.
func LoadTaxonomy(path string) (Taxonomy, error) {
	t := DefaultTaxonomy()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	var file Taxonomy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	if l := clean(file.Categories); len(l) > 0 {
		t.Categories = l
	}
	if l := clean(file.Payments); len(l) > 0 {
		t.Payments = l
	}
	if l := clean(file.Users); len(l) > 0 {
		t.Users = l
	}
	return t, nil
}

// HasUser reports whether name is one of the configured users.
func (t Taxonomy) HasUser(name string) bool {
	return slices.Contains(t.Users, strings.TrimSpace(name))
}

// clean trims entries, drops blanks and keeps the first occurrence of duplicates.
func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
