package gen

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/dave/jennifer/jen"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/tools/imports"

	"github.com/syssam/csr/compiler/load"
)

const (
	registerFile = load.RegisterFile
	cacheFile    = ".csrgen.cache"
)

// format renders f and formats it as the file dir/name.
func format(dir, name string, f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("render", name, "cannot render the file", err)
	}
	src, err := imports.Process(filepath.Join(dir, name), buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, NewGenerationError("format", name, "cannot format the file", err)
	}
	return src, nil
}

// manifest is the content of the cache file: the digest of every file the
// previous pass wrote in the package directory.
type manifest struct {
	Header string            `msgpack:"header"`
	Files  map[string]string `msgpack:"files"`
}

func digest(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// packageOutput collects the files of one package directory and writes
// them in one flush.
type packageOutput struct {
	cfg   *Config
	dir   string
	files map[string][]byte
	// kept lists files left untouched, such as the output of skipped
	// declarations.
	kept map[string]bool
}

func newPackageOutput(cfg *Config, dir string) *packageOutput {
	return &packageOutput{cfg: cfg, dir: dir, files: make(map[string][]byte), kept: make(map[string]bool)}
}

func (o *packageOutput) add(name string, src []byte) { o.files[name] = src }

func (o *packageOutput) keep(name string) { o.kept[name] = true }

// flush writes the files that differ from the disk, removes stale
// generated files and updates the cache manifest.
func (o *packageOutput) flush(report *Report) error {
	cache := o.cfg.FeatureEnabled(FeatureCache.Name)
	prev := o.readManifest(cache)
	next := &manifest{Header: o.cfg.Header, Files: make(map[string]string, len(o.files))}

	names := make([]string, 0, len(o.files))
	for name := range o.files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		var (
			src  = o.files[name]
			sum  = digest(src)
			path = filepath.Join(o.dir, name)
		)
		next.Files[name] = sum
		if o.unchanged(prev, name, sum, src) {
			report.Unchanged = append(report.Unchanged, path)
			continue
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return NewGenerationError("write", path, "cannot write the file", err)
		}
		if o.cfg.Verbose {
			o.cfg.logf("wrote %s", path)
		}
		report.Written = append(report.Written, path)
	}

	stale, err := o.stale()
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return NewGenerationError("clean", path, "cannot remove the stale file", err)
		}
		if o.cfg.Verbose {
			o.cfg.logf("removed %s", path)
		}
		report.Removed = append(report.Removed, path)
	}
	if cache {
		return o.writeManifest(prev, next)
	}
	return nil
}

// unchanged reports whether the file on disk already holds src. With the
// cache enabled, a matching digest spares reading the file.
func (o *packageOutput) unchanged(prev *manifest, name, sum string, src []byte) bool {
	path := filepath.Join(o.dir, name)
	if prev != nil && prev.Files[name] == sum {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	old, err := os.ReadFile(path)
	return err == nil && bytes.Equal(old, src)
}

// stale returns the generated files of the directory that are neither
// produced nor kept by this pass. Files whose first line is not the header
// are left alone.
func (o *packageOutput) stale() ([]string, error) {
	entries, err := os.ReadDir(o.dir)
	if err != nil {
		return nil, NewGenerationError("clean", o.dir, "cannot list the package directory", err)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !load.Generated(name) || o.kept[name] {
			continue
		}
		if _, ok := o.files[name]; ok {
			continue
		}
		path := filepath.Join(o.dir, name)
		if o.hasHeader(path) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (o *packageOutput) hasHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	line, _, err := bufio.NewReader(f).ReadLine()
	return err == nil && string(line) == "// "+o.cfg.Header
}

// readManifest returns the manifest of the previous pass, or nil when the
// cache is off, absent, unreadable or written under another header.
func (o *packageOutput) readManifest(enabled bool) *manifest {
	if !enabled {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(o.dir, cacheFile))
	if err != nil {
		return nil
	}
	var m manifest
	if err := msgpack.Unmarshal(data, &m); err != nil || m.Header != o.cfg.Header {
		return nil
	}
	return &m
}

func (o *packageOutput) writeManifest(prev, next *manifest) error {
	if prev != nil && sameFiles(prev.Files, next.Files) {
		return nil
	}
	if len(next.Files) == 0 {
		return remove(o.dir, cacheFile)
	}
	data, err := msgpack.Marshal(next)
	if err != nil {
		return NewGenerationError("write", cacheFile, "cannot encode the cache manifest", err)
	}
	path := filepath.Join(o.dir, cacheFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewGenerationError("write", path, "cannot write the cache manifest", err)
	}
	return nil
}

func sameFiles(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
