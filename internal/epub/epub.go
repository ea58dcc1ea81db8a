// Package epub reads EPUB containers and extracts chapter text in reading order.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

const containerPath = "META-INF/container.xml"

var (
	// ErrNoContainer is returned when META-INF/container.xml is missing.
	ErrNoContainer = errors.New("epub container.xml not found")

	// ErrNoRootfile is returned when the container names no package document.
	ErrNoRootfile = errors.New("epub container has no rootfile")
)

// Chapter is one spine item rendered to plain text.
type Chapter struct {
	// ID is the manifest identifier.
	ID string

	// Href is the chapter path inside the archive.
	Href string

	// Title is the first heading found in the chapter, if any.
	Title string

	// Text is the chapter body as plain text.
	Text string
}

// Book is the readable content of an EPUB.
type Book struct {
	Title    string
	Author   string
	Language string
	Chapters []Chapter
}

// Text joins chapter texts with blank lines, skipping empty chapters.
func (b *Book) Text() string {
	parts := make([]string, 0, len(b.Chapters))
	for _, ch := range b.Chapters {
		if t := strings.TrimSpace(ch.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Open reads the EPUB at path.
func Open(p string) (*Book, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub %s; %w", p, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat epub %s; %w", p, err)
	}

	return Read(f, info.Size())
}

// Read parses an EPUB from r.
func Read(r io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub as zip; %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	rootfile, err := readContainer(files)
	if err != nil {
		return nil, err
	}

	pkg, err := readPackage(files, rootfile)
	if err != nil {
		return nil, err
	}

	book := &Book{
		Title:    strings.TrimSpace(pkg.Metadata.Title),
		Author:   strings.TrimSpace(pkg.Metadata.Creator),
		Language: strings.TrimSpace(pkg.Metadata.Language),
	}

	manifest := make(map[string]opfItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		manifest[item.ID] = item
	}

	base := path.Dir(rootfile)
	for _, ref := range pkg.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok || !isDocument(item.MediaType) {
			continue
		}

		href := path.Join(base, item.Href)
		f, ok := files[href]
		if !ok {
			return nil, fmt.Errorf("spine item %q references missing file %s", ref.IDRef, href)
		}

		content, err := readFile(f)
		if err != nil {
			return nil, err
		}

		title, text, err := ExtractText(content)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from %s; %w", href, err)
		}

		book.Chapters = append(book.Chapters, Chapter{
			ID:    item.ID,
			Href:  href,
			Title: title,
			Text:  text,
		})
	}

	return book, nil
}

// isDocument reports whether a manifest item holds chapter markup.
func isDocument(mediaType string) bool {
	return mediaType == "application/xhtml+xml" || mediaType == "text/html"
}

func readContainer(files map[string]*zip.File) (string, error) {
	f, ok := files[containerPath]
	if !ok {
		return "", ErrNoContainer
	}

	data, err := readFile(f)
	if err != nil {
		return "", err
	}

	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("failed to parse container.xml; %w", err)
	}

	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", ErrNoRootfile
}

func readPackage(files map[string]*zip.File, rootfile string) (*opfPackage, error) {
	f, ok := files[rootfile]
	if !ok {
		return nil, fmt.Errorf("package document %s not found in epub", rootfile)
	}

	data, err := readFile(f)
	if err != nil {
		return nil, err
	}

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package document %s; %w", rootfile, err)
	}
	return &pkg, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in epub; %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s in epub; %w", f.Name, err)
	}
	return data, nil
}

// EPUB XML structures

type container struct {
	XMLName   xml.Name   `xml:"container"`
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Language string `xml:"language"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfSpine struct {
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef string `xml:"idref,attr"`
}
