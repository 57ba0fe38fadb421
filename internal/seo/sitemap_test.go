// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestNewSitemap_Entries(t *testing.T) {
	updatedAt := time.Date(2025, 1, 15, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))

	s := NewSitemap("https://example.com/", []SitemapProject{{ID: "abc", UpdatedAt: updatedAt}}, []string{"living room"})

	if len(s.URLs) != 3 {
		t.Fatalf("urls = %d, want 3", len(s.URLs))
	}

	home := s.URLs[0]
	if home.Loc != "https://example.com/" || home.Priority != "1.0" {
		t.Errorf("home = %+v", home)
	}
	if home.LastMod != "2025-01-15T15:00:00Z" {
		t.Errorf("home LastMod = %q, want the project time in UTC", home.LastMod)
	}

	if got := s.URLs[1].Loc; got != "https://example.com/?category=living+room" {
		t.Errorf("category Loc = %q", got)
	}

	project := s.URLs[2]
	if project.Loc != "https://example.com/project/abc" {
		t.Errorf("project Loc = %q", project.Loc)
	}
	if project.ChangeFreq != ChangeFreqMonthly {
		t.Errorf("ChangeFreq = %q, want %q", project.ChangeFreq, ChangeFreqMonthly)
	}
}

func TestGenerateSitemap(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	out, err := GenerateSitemap("https://example.com", []SitemapProject{
		{ID: "p1", UpdatedAt: older},
		{ID: "p2", UpdatedAt: newer},
	}, []string{"kitchen"})
	if err != nil {
		t.Fatalf("GenerateSitemap() error = %v", err)
	}

	if !strings.HasPrefix(string(out), xml.Header) {
		t.Error("sitemap should start with the XML header")
	}

	var sitemap Sitemap
	if err := xml.Unmarshal(out, &sitemap); err != nil {
		t.Fatalf("sitemap is not valid XML: %v", err)
	}
	if sitemap.XMLNS != XMLNamespace {
		t.Errorf("xmlns = %q, want %q", sitemap.XMLNS, XMLNamespace)
	}
	if len(sitemap.URLs) != 4 {
		t.Fatalf("urls = %d, want 4", len(sitemap.URLs))
	}
	if sitemap.URLs[0].LastMod != "2025-06-01T00:00:00Z" {
		t.Errorf("home LastMod = %q, want the newest project time", sitemap.URLs[0].LastMod)
	}
	if sitemap.URLs[1].Loc != "https://example.com/?category=kitchen" {
		t.Errorf("category Loc = %q", sitemap.URLs[1].Loc)
	}
}

func TestGenerateSitemapEmpty(t *testing.T) {
	out, err := GenerateSitemap("https://example.com", nil, nil)
	if err != nil {
		t.Fatalf("GenerateSitemap() error = %v", err)
	}
	if strings.Count(string(out), "<lastmod>") != 0 {
		t.Errorf("home page of an empty portfolio has no lastmod:\n%s", out)
	}
	if strings.Count(string(out), "<url>") != 1 {
		t.Errorf("empty portfolio should list only the home page:\n%s", out)
	}
}
