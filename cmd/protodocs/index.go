package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p-blackswan/protodocs/internal/implref"
)

var commitPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

type indexOptions struct {
	version string
	source  string
	impl    string
	repo    string
	commit  string
	prefix  string
	out     string
	db      bool
}

func newIndexCmd(c *cli) *cobra.Command {
	opts := indexOptions{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Scan implementation source for protocol member references",
		Long:  "index walks a source checkout, records every line naming a member of the chosen protocol version, and writes the result as a JSON index file or into the SQLite index store.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (opts.out == "") == !opts.db {
				return fmt.Errorf("exactly one of --out or --db is required")
			}
			return runIndex(cmd, c, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.version, "version", "", "protocol version slug from the manifest")
	f.StringVar(&opts.source, "source", ".", "source checkout to scan")
	f.StringVar(&opts.impl, "implementation", string(implref.Hermes), "implementation id")
	f.StringVar(&opts.repo, "repo", "", "GitHub owner/name the checkout belongs to")
	f.StringVar(&opts.commit, "commit", "", "commit SHA, or a ref resolved through GitHub")
	f.StringVar(&opts.prefix, "path-prefix", "", "checkout path inside the repository")
	f.StringVar(&opts.out, "out", "", "write the index JSON to this file")
	f.BoolVar(&opts.db, "db", false, "save the index into INDEX_DB_PATH")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func runIndex(cmd *cobra.Command, c *cli, opts indexOptions) error {
	ctx := cmd.Context()
	logger := c.logger

	impl, err := implref.ParseImplementation(opts.impl)
	if err != nil {
		return err
	}

	a, err := wireApp(c.cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()
	if opts.db && a.store == nil {
		return fmt.Errorf("--db needs INDEX_DB_PATH")
	}

	v, err := a.versions.BySlug(ctx, opts.version)
	if err != nil {
		return err
	}
	doc, err := v.Protocol(ctx)
	if err != nil {
		return err
	}

	loc, err := repoLocation(ctx, a, opts)
	if err != nil {
		return err
	}

	ix, err := implref.Scan(ctx, os.DirFS(opts.source), doc, implref.ScanOptions{
		Implementation: impl,
		Repo:           loc,
		Extensions:     c.cfg.ScanExtensionList(),
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	if opts.db {
		if err := a.store.SaveIndex(ctx, v.Slug(), ix); err != nil {
			return err
		}
	} else if err := writeIndexFile(opts.out, ix); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "indexed %d members for %s\n", ix.Len(), v.Slug())
	return err
}

// repoLocation pins references to a commit. Without --repo the index
// carries line numbers only.
func repoLocation(ctx context.Context, a *app, opts indexOptions) (implref.GitHubLocation, error) {
	if opts.repo == "" {
		return implref.GitHubLocation{}, nil
	}
	owner, name, ok := strings.Cut(opts.repo, "/")
	if !ok || owner == "" || name == "" {
		return implref.GitHubLocation{}, fmt.Errorf("--repo must be owner/name, got %q", opts.repo)
	}

	commit := opts.commit
	if commit == "" {
		commit = "HEAD"
	}
	if !commitPattern.MatchString(commit) {
		sha, err := a.github.ResolveCommit(ctx, owner, name, commit)
		if err != nil {
			return implref.GitHubLocation{}, fmt.Errorf("resolving %s: %w", commit, err)
		}
		commit = sha
	}

	return implref.GitHubLocation{
		Owner:     owner,
		Repo:      name,
		CommitSHA: commit,
		Path:      strings.Trim(opts.prefix, "/"),
	}, nil
}

func writeIndexFile(path string, ix *implref.Index) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := implref.Encode(f, ix); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
