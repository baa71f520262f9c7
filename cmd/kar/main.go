// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"

	"github.com/devblok/trigon/utility/kar"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil && u.Name != "" {
		currentUserName = u.Name
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the archive given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	list            = flag.String("l", "", "List the contents of the archive given")
	dstFile         = flag.String("f", "out.kar", "Destination file, or directory when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()

	var ops int
	for _, op := range []string{*extract, *compress, *list} {
		if op != "" {
			ops++
		}
	}
	if ops > 1 {
		fail(errors.New("only one operation at a time"))
	}

	var err error
	switch {
	case *compress != "":
		err = compressFiles(*compress, *dstFile)
	case *extract != "":
		err = extractFiles(*extract, *dstFile)
	case *list != "":
		err = listFiles(*list)
	default:
		flag.PrintDefaults()
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "kar:", err)
	os.Exit(1)
}

func say(format string, args ...interface{}) {
	if !*silent {
		fmt.Printf(format+"\n", args...)
	}
}

func compressFiles(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	if err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return err
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	builder := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})

	for _, ftc := range filesToCompress {
		rel, err := filepath.Rel(src, ftc)
		if err != nil || rel == "." {
			rel = filepath.Base(ftc)
		}
		if err := addFile(builder, filepath.ToSlash(rel), ftc); err != nil {
			return err
		}
		say("added %s", rel)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	n, err := builder.WriteTo(out)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return errors.Wrapf(err, "write %s", dst)
	}
	say("wrote %d files, %d bytes to %s", builder.Len(), n, dst)
	return out.Close()
}

func addFile(builder *kar.Builder, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return errors.Wrapf(builder.Add(name, f), "add %s", path)
}

func openArchive(path string) (*kar.Archive, io.Closer, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, nil, err
	}
	archive, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, nil, errors.Wrapf(err, "read %s", path)
	}
	return archive, r, nil
}

func extractFiles(src, dstDir string) error {
	if dstDir == "out.kar" {
		dstDir = "."
	}

	archive, closer, err := openArchive(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	for _, name := range archive.Names() {
		target := filepath.Join(dstDir, filepath.FromSlash(name))
		rel, err := filepath.Rel(dstDir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return errors.Errorf("entry %q escapes %s", name, dstDir)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := extractFile(archive, name, target); err != nil {
			return err
		}
		say("extracted %s", target)
	}
	return nil
}

func extractFile(archive *kar.Archive, name, target string) error {
	r, err := archive.Open(name)
	if err != nil {
		return errors.Wrapf(err, "open entry %s", name)
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Wrapf(err, "extract %s", name)
	}
	return out.Close()
}

func listFiles(src string) error {
	archive, closer, err := openArchive(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	header := archive.Header()
	fmt.Printf("author: %s\nversion: %d\ncreated: %s\n",
		header.Author, header.Version, time.Unix(header.DateCreated, 0).Format(time.RFC3339))
	for _, name := range archive.Names() {
		r, err := archive.Open(name)
		if err != nil {
			return err
		}
		fmt.Printf("%10d %s\n", r.Size(), name)
	}
	return nil
}
