// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package rdfparse

import (
	"encoding/xml"
	"fmt"
)

// The structures below mirror the shape of one Gutenberg RDF/XML document.
// Go's encoding/xml matches struct tags against an element's local name once
// the relevant namespace (rdf:, dcterms:, pgterms:) is declared on the
// document's root, so these tags intentionally omit namespace prefixes --
// the same simplification kentquirk-little-free-library/pkg/rdf/rdftypes.go
// uses. verifyNamespaces checks the declared xmlns values so a document
// that is not actually Gutenberg RDF can be rejected rather than silently
// parsed.

const (
	nsRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsDCTerms  = "http://purl.org/dc/terms/"
	nsPGTerms  = "http://www.gutenberg.org/2009/pgterms/"
)

// xmlDoc is the root <rdf:RDF> element of one Gutenberg RDF file.
type xmlDoc struct {
	XMLName    xml.Name    `xml:"RDF"`
	Namespaces []xml.Attr  `xml:",any,attr"`
	Ebook      xmlEbook    `xml:"ebook"`
}

// namespaceURIs returns the set of xmlns attribute values declared on the
// root element, used to verify this is in fact RDF + Dublin Core Terms +
// pgterms before trusting the decoded content.
func (d *xmlDoc) namespaceURIs() map[string]bool {
	out := make(map[string]bool, len(d.Namespaces))
	for _, a := range d.Namespaces {
		out[a.Value] = true
	}
	return out
}

// verifyNamespaces rejects a document that does not declare rdf:, dcterms:,
// and pgterms: -- i.e. one that is not actually Gutenberg RDF, even if
// encoding/xml happened to decode some matching element names.
func (d *xmlDoc) verifyNamespaces() error {
	declared := d.namespaceURIs()
	for _, ns := range []string{nsRDF, nsDCTerms, nsPGTerms} {
		if !declared[ns] {
			return fmt.Errorf("missing expected namespace declaration %s", ns)
		}
	}
	return nil
}

// xmlEbook is the <pgterms:ebook> description for one book.
type xmlEbook struct {
	About     string        `xml:"about,attr"`
	Resource  string        `xml:"resource,attr"`
	Title     string        `xml:"title"`
	Creators  []xmlCreator  `xml:"creator"`
	Subjects  []xmlValueRef `xml:"subject"`
	Bookshelves []xmlValueRef `xml:"bookshelf"`
	Language  xmlLanguage   `xml:"language"`
	Issued    string        `xml:"issued"`
	Rights    string        `xml:"rights"`
	Downloads string        `xml:"downloads"`
}

// xmlCreator wraps the <pgterms:agent> nested under <dcterms:creator>.
type xmlCreator struct {
	Agent xmlAgent `xml:"agent"`
	Text  string   `xml:",chardata"`
}

// xmlAgent is one <pgterms:agent> element.
type xmlAgent struct {
	About     string `xml:"about,attr"`
	Name      string `xml:"name"`
	Birthdate string `xml:"birthdate"`
	Deathdate string `xml:"deathdate"`
	Webpage   xmlResourceRef `xml:"webpage"`
}

// xmlResourceRef captures an rdf:resource reference on an element, e.g.
// <pgterms:webpage rdf:resource="https://..."/>.
type xmlResourceRef struct {
	Resource string `xml:"resource,attr"`
}

// xmlValueRef is the <rdf:Description><rdf:value>...</rdf:value></rdf:Description>
// pattern Gutenberg uses for subject/bookshelf/language values.
type xmlValueRef struct {
	Description struct {
		Value string `xml:"value"`
	} `xml:"Description"`
}

// xmlLanguage is the <dcterms:language> element, which wraps a value the
// same way subjects/bookshelves do.
type xmlLanguage struct {
	Description struct {
		Value string `xml:"value"`
	} `xml:"Description"`
}
