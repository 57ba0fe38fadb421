// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"html/template"
	"net/url"
	"strings"
)

const (
	contactSubject = "Ecovibe: Exploring a Remodel - Let's Talk"
	contactBody    = `Hi EcoVibe Team,

I'm interested in exploring a potential remodel project and would love to learn more about your approach. I'm just gathering ideas and thought it would be great to connect.

Project Overview:
   Type of Space: 
   Timeline:
   Budget Range:
   Additional Notes:

Contact Preferences:
   Contact preferred by (phone, email, or text): 
   Best time to reach me:
   Mobile phone number (optional):

Looking forward to hearing from you!`
)

// Contact holds the links of the contact section. Nothing submitted
// through it is stored.
type Contact struct {
	Phone     string
	Email     string
	Instagram string
}

// TelURL returns the tel: link keeping only digits and "+". html/template
// rewrites unknown schemes, so the result is marked safe.
func (c Contact) TelURL() template.URL {
	phone := strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, c.Phone)
	return template.URL("tel:" + phone) //nolint:gosec // digits and + only
}

// MailtoURL returns a mailto: link with the enquiry template as subject and
// body. Line breaks are sent as CRLF and every value is percent-encoded.
func (c Contact) MailtoURL() string {
	body := strings.ReplaceAll(contactBody, "\n", "\r\n")
	return "mailto:" + c.Email + "?subject=" + mailtoEscape(contactSubject) + "&body=" + mailtoEscape(body)
}

// mailtoEscape encodes spaces as %20; mail clients show "+" literally.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// PinterestShareURL builds a Pinterest "pin it" link for one image.
func PinterestShareURL(pageURL, imageURL, description string) string {
	v := url.Values{}
	v.Set("url", pageURL)
	v.Set("media", imageURL)
	v.Set("description", description)
	return "https://pinterest.com/pin/create/button/?" + v.Encode()
}
