package implref

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/protodocs/internal/protocol"
)

// DefaultExtensions are the source suffixes scanned when none are configured.
var DefaultExtensions = []string{".cpp", ".h"}

// ScanOptions configures a source scan.
type ScanOptions struct {
	Implementation Implementation
	// Repo pins discovered references. Path is used as a prefix for every
	// scanned file's path inside the repository.
	Repo       GitHubLocation
	Extensions []string
	Logger     zerolog.Logger
}

type target struct {
	kind   protocol.MemberKind
	domain string
	key    string
}

// Scan walks fsys in lexical order and records every line that contains a
// quoted "Domain.key" literal naming a member of doc. References for a
// member follow discovery order, so the first file and line found becomes
// the primary reference.
func Scan(ctx context.Context, fsys fs.FS, doc *protocol.Document, opts ScanOptions) (*Index, error) {
	if !opts.Implementation.Known() {
		return nil, unknownImplementation(opts.Implementation)
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	targets := memberTargets(doc)
	b := NewBuilder()
	files := 0

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !hasExtension(p, exts) {
			return nil
		}
		files++
		return scanFile(fsys, p, targets, b, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning implementation source: %w", err)
	}

	ix := b.Build()
	opts.Logger.Info().
		Str("implementation", string(opts.Implementation)).
		Int("files", files).
		Int("members", ix.Len()).
		Msg("implementation source scanned")
	return ix, nil
}

func memberTargets(doc *protocol.Document) map[string][]target {
	targets := map[string][]target{}
	for i := range doc.Domains {
		d := &doc.Domains[i]
		for _, kind := range protocol.Kinds {
			for _, key := range d.MemberKeys(kind) {
				mk := MemberKey(d.Domain, key)
				targets[mk] = append(targets[mk], target{kind: kind, domain: d.Domain, key: key})
			}
		}
	}
	return targets
}

func scanFile(fsys fs.FS, p string, targets map[string][]target, b *Builder, opts ScanOptions) error {
	f, err := fsys.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	repoPath := p
	if opts.Repo.Path != "" {
		repoPath = path.Join(opts.Repo.Path, p)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		for _, lit := range quoted(sc.Text()) {
			for _, t := range targets[lit] {
				ref := Reference{Line: line}
				if opts.Repo.Owner != "" {
					loc := opts.Repo
					loc.Path = repoPath
					ref.GitHub = &loc
				}
				if err := b.Add(opts.Implementation, t.kind, t.domain, t.key, ref); err != nil {
					return err
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}
	return nil
}

// quoted returns the contents of each double-quoted run on a line.
// Escapes are not interpreted; member keys never contain them.
func quoted(line string) []string {
	var out []string
	for {
		start := strings.IndexByte(line, '"')
		if start < 0 {
			return out
		}
		rest := line[start+1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return out
		}
		out = append(out, rest[:end])
		line = rest[end+1:]
	}
}

func hasExtension(p string, exts []string) bool {
	ext := path.Ext(p)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
