// Copyright (c) 2025 Oskar Kvist
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package dfxml writes Digital Forensics XML listing reports, one
// fileobject per decoded directory entry with byte runs locating the file
// data inside the image.
package dfxml

import (
	"encoding/xml"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"

	"github.com/okvist/exhume/pkg/sysinfo"
)

const XmlOutputVersion = "1.0"

// DefaultMetadata is the metadata block written on every listing report.
var DefaultMetadata = Metadata{
	Xmlns:    "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML",
	XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
	XmlnsDC:  "http://purl.org/dc/elements/1.1/",
	Type:     "Filesystem Listing",
}

// DFXMLHeader represents the root element of a DFXML document.
type DFXMLHeader struct {
	XMLName   xml.Name `xml:"dfxml"`
	XmlOutput string   `xml:"xmloutputversion,attr,omitempty"`
	Metadata  Metadata `xml:"metadata"`
	Creator   Creator  `xml:"creator"`
	Source    Source   `xml:"source"`
}

// Metadata contains the namespace attributes and document type.
type Metadata struct {
	XMLName  xml.Name `xml:"metadata"`
	Xmlns    string   `xml:"xmlns,attr"`
	XmlnsXsi string   `xml:"xmlns:xsi,attr"`
	XmlnsDC  string   `xml:"xmlns:dc,attr"`
	Type     string   `xml:"dc:type"`
}

// Creator describes the software and environment that generated the DFXML.
type Creator struct {
	XMLName              xml.Name `xml:"creator"`
	Package              string   `xml:"package"`
	Version              string   `xml:"version"`
	ExecutionEnvironment ExecEnv  `xml:"execution_environment"`
}

// ExecEnv provides information about the host where the DFXML was created.
type ExecEnv struct {
	OS      string `xml:"os_sysname"`
	Release string `xml:"os_release"`
	Version string `xml:"os_version"`
	Host    string `xml:"host"`
	Arch    string `xml:"arch"`
	UID     int    `xml:"uid"`
	Start   string `xml:"start_time"`
}

// Source describes the forensic image the listing was produced from.
type Source struct {
	XMLName       xml.Name `xml:"source"`
	ImageFilename string   `xml:"image_filename"`
	SectorSize    int      `xml:"sectorsize"`
	ImageSize     uint64   `xml:"image_size"`
}

// FileObject represents a single file or directory within the image.
type FileObject struct {
	XMLName  xml.Name `xml:"fileobject"`
	Filename string   `xml:"filename"`
	FileSize uint64   `xml:"filesize"`
	NameType string   `xml:"name_type,omitempty"` // "r" regular, "d" directory
	ByteRuns ByteRuns `xml:"byte_runs"`
}

// ByteRuns is a collection of ByteRun entries.
type ByteRuns struct {
	Runs []ByteRun `xml:"byte_run"`
}

// ByteRun describes a contiguous block of file data within the image.
type ByteRun struct {
	Offset    uint64 `xml:"offset,attr"`     // logical offset within the file
	ImgOffset uint64 `xml:"img_offset,attr"` // physical offset within the image
	Length    uint64 `xml:"len,attr"`
}

// GetExecEnv gathers runtime information for the ExecEnv block.
func GetExecEnv() ExecEnv {
	sinfo, err := sysinfo.Stat()
	if err != nil {
		sinfo = &sysinfo.SysUnknown
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := 0
	if currentUser, err := user.Current(); err == nil {
		if uidInt, parseErr := strconv.Atoi(currentUser.Uid); parseErr == nil {
			uid = uidInt
		}
	}

	return ExecEnv{
		OS:      sinfo.Name,
		Release: sinfo.Release,
		Version: sinfo.Version,
		Host:    host,
		Arch:    runtime.GOARCH,
		UID:     uid,
		Start:   time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}
}
