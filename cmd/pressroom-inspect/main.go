// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/pressroom/lib/config"
	"github.com/bureau-foundation/pressroom/lib/docstore"
	"github.com/bureau-foundation/pressroom/lib/ref"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var dbPath string
	var groupFlag string
	var languageFlag string
	var versionFlag int
	var verbose bool

	flagSet := pflag.NewFlagSet("pressroom-inspect", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to pressroom.yaml (default: $PRESSROOM_CONFIG)")
	flagSet.StringVar(&dbPath, "db", "", "document store path (overrides the config file)")
	flagSet.StringVar(&groupFlag, "group", "", "content group")
	flagSet.StringVar(&languageFlag, "language", "", "language code")
	flagSet.IntVar(&versionFlag, "version", 0, "version number (0 resolves published, else newest)")
	flagSet.BoolVar(&verbose, "verbose", false, "log store operations to stderr")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(flagSet)
		return fmt.Errorf("a command is required")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	store, err := openStore(configPath, dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if groupFlag == "" {
		return fmt.Errorf("--group is required")
	}
	group, err := ref.ParseGroup(groupFlag)
	if err != nil {
		return err
	}

	ctx := context.Background()
	command, rest := args[0], args[1:]
	switch command {
	case "documents":
		return listDocuments(ctx, store, group)
	case "languages":
		id, err := oneDocumentArg(rest)
		if err != nil {
			return err
		}
		return listLanguages(ctx, store, group, id)
	case "versions":
		id, err := oneDocumentArg(rest)
		if err != nil {
			return err
		}
		language, err := requireLanguage(languageFlag)
		if err != nil {
			return err
		}
		return listVersions(ctx, store, group, id, language)
	case "show":
		id, err := oneDocumentArg(rest)
		if err != nil {
			return err
		}
		language, err := requireLanguage(languageFlag)
		if err != nil {
			return err
		}
		return show(ctx, store, group, id, language, ref.Version(versionFlag))
	default:
		return fmt.Errorf("unknown command %q (expected documents, languages, versions, or show)", command)
	}
}

func openStore(configPath, dbPath string, logger *slog.Logger) (*docstore.Store, error) {
	if dbPath == "" {
		var cfg *config.Config
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		dbPath = cfg.Store.Path
	}
	return docstore.Open(docstore.Config{Path: dbPath, Logger: logger})
}

func oneDocumentArg(args []string) (ref.DocumentID, error) {
	if len(args) != 1 {
		return ref.DocumentID{}, fmt.Errorf("exactly one document identifier is required")
	}
	return ref.ParseDocumentID(args[0])
}

func requireLanguage(flag string) (ref.Language, error) {
	if flag == "" {
		return ref.Language{}, fmt.Errorf("--language is required for this command")
	}
	return ref.ParseLanguage(flag)
}

func listDocuments(ctx context.Context, store *docstore.Store, group ref.Group) error {
	documents, err := store.ListDocuments(ctx, group)
	if err != nil {
		return err
	}
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "DOCUMENT\tTITLE\tLANGUAGES\tVERSIONS\tUPDATED")
	for _, info := range documents {
		fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%s\n",
			info.ID, info.Title, info.Languages, info.Versions,
			info.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return writer.Flush()
}

func listLanguages(ctx context.Context, store *docstore.Store, group ref.Group, id ref.DocumentID) error {
	languages, err := store.ListLanguages(ctx, group, id)
	if err != nil {
		return err
	}
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "LANGUAGE\tSTATUS")
	for _, info := range languages {
		fmt.Fprintf(writer, "%s\t%s\n", info.Language, info.Status)
	}
	return writer.Flush()
}

func listVersions(ctx context.Context, store *docstore.Store, group ref.Group, id ref.DocumentID, language ref.Language) error {
	versions, err := store.ListVersions(ctx, group, id, language)
	if err != nil {
		return err
	}
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "VERSION\tSTATUS\tUPDATED")
	for _, info := range versions {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			info.Version, info.Status, info.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return writer.Flush()
}

func show(ctx context.Context, store *docstore.Store, group ref.Group, id ref.DocumentID, language ref.Language, version ref.Version) error {
	doc, err := store.Read(ctx, group, id, language, version)
	if err != nil {
		return err
	}

	fmt.Printf("document:  %s/%s\n", doc.Group, doc.ID)
	fmt.Printf("language:  %s (primary: %s)\n", doc.Language, doc.PrimaryLanguage)
	fmt.Printf("version:   %s\n", doc.Version)
	fmt.Printf("status:    %s\n", doc.Status)
	fmt.Printf("title:     %s\n", doc.Title)
	if doc.URLSlug != "" {
		fmt.Printf("url slug:  %s\n", doc.URLSlug)
	}
	if doc.DirectorySlug != "" {
		fmt.Printf("directory: %s\n", doc.DirectorySlug)
	}
	if !doc.PublishedAt.IsZero() {
		fmt.Printf("published: %s\n", doc.PublishedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("updated:   %s\n", doc.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("\n%s\n", doc.Body)
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Pressroom store inspector — read-only views of a document store.

Usage:
  pressroom-inspect [flags] documents
  pressroom-inspect [flags] languages <document>
  pressroom-inspect [flags] versions --language <code> <document>
  pressroom-inspect [flags] show --language <code> [--version N] <document>

The store is located via --db, or the store.path of the config file
given by --config or $PRESSROOM_CONFIG.

Flags:
%s`, flagSet.FlagUsages())
}
