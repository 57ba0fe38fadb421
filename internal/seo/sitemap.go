// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the crawler-facing documents of the public site.
package seo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type ChangeFreq string

const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// Entry is one <url> of the sitemap.
type Entry struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

// SitemapProject is what the sitemap needs to know of a project.
type SitemapProject struct {
	ID        string
	UpdatedAt time.Time
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// NewSitemap lists the home page first, then the gallery filtered by each
// category, then every project page. The home page is as fresh as the
// most recently updated project.
func NewSitemap(siteURL string, projects []SitemapProject, categories []string) Sitemap {
	base := strings.TrimSuffix(siteURL, "/")

	var newest time.Time
	for _, p := range projects {
		if p.UpdatedAt.After(newest) {
			newest = p.UpdatedAt
		}
	}

	urls := make([]Entry, 0, 1+len(categories)+len(projects))
	urls = append(urls, Entry{Loc: base + "/", LastMod: lastMod(newest), ChangeFreq: ChangeFreqDaily, Priority: "1.0"})
	for _, c := range categories {
		urls = append(urls, Entry{
			Loc:        base + "/?" + url.Values{"category": {c}}.Encode(),
			ChangeFreq: ChangeFreqWeekly,
			Priority:   "0.5",
		})
	}
	for _, p := range projects {
		urls = append(urls, Entry{
			Loc:        base + "/project/" + url.PathEscape(p.ID),
			LastMod:    lastMod(p.UpdatedAt),
			ChangeFreq: ChangeFreqMonthly,
			Priority:   "0.8",
		})
	}
	return Sitemap{XMLNS: XMLNamespace, URLs: urls}
}

// Marshal renders the document with its XML declaration.
func (s Sitemap) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding sitemap: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateSitemap is NewSitemap followed by Marshal.
func GenerateSitemap(siteURL string, projects []SitemapProject, categories []string) ([]byte, error) {
	return NewSitemap(siteURL, projects, categories).Marshal()
}
