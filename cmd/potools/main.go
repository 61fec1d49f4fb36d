// potools — gettext PO catalog tools: merge, format-check, and printf.
package main

import (
	"context"
	"fmt"
	"os"

	. "github.com/minios-linux/potools/i18n"
	"github.com/minios-linux/potools/format"
	"github.com/minios-linux/potools/merge"
	"github.com/minios-linux/potools/po"
	"github.com/minios-linux/potools/printf"
	"github.com/minios-linux/potools/runconfig"
	"github.com/minios-linux/potools/synlint"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func logError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "potools",
		Short:         T("gettext PO catalog tools"),
		Long:          T("potools — msgmerge-style catalog merging, format-string checking, and a printf command, over GNU gettext PO files."),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMsgmergeCmd(), newMsgfmtCheckCmd(), newMsgprintfCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf(T("potools version %s")+"\n", version)
			fmt.Printf("  %s %s\n", T("commit:"), commit)
		},
	}
}

// ---------------------------------------------------------------------------
// msgmerge
// ---------------------------------------------------------------------------

func newMsgmergeCmd() *cobra.Command {
	var (
		output       string
		compendiums  []string
		useFuzzy     bool
		keepPrevious bool
		forMsgfmt    bool
		multiDomain  bool
		catalogName  string
	)

	cmd := &cobra.Command{
		Use:   "msgmerge <definitions.po> <reference.pot>",
		Short: T("Merge an existing translation catalog against an updated reference template"),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := runconfig.File{}
			if dir, err := os.Getwd(); err == nil {
				if loaded, err := runconfig.Load(dir); err == nil {
					cfg = *loaded
				}
			}

			defs, _, err := po.ParseFile(args[0], po.ParseReaderOptions{})
			if err != nil {
				return fmt.Errorf(T("reading %s: %w"), args[0], err)
			}
			refs, counter, err := po.ParseFile(args[1], po.ParseReaderOptions{})
			if err != nil {
				return fmt.Errorf(T("reading %s: %w"), args[1], err)
			}
			if counter.Fatal() {
				return fmt.Errorf(T("%s: too many errors, aborting"), args[1])
			}

			var compendiumLists []*po.DomainList
			for _, path := range append(cfg.AbsCompendiums("."), compendiums...) {
				dl, _, err := po.ParseFile(path, po.ParseReaderOptions{})
				if err != nil {
					return fmt.Errorf(T("reading compendium %s: %w"), path, err)
				}
				compendiumLists = append(compendiumLists, dl)
			}

			mcfg := merge.Config{
				UseFuzzyMatching: useFuzzy,
				KeepPrevious:     keepPrevious || cfg.KeepPrevious,
				ForMsgfmt:        forMsgfmt,
				MultiDomain:      multiDomain,
				CatalogName:      catalogName,
			}
			merged, stats, err := merge.Merge(context.Background(), defs, refs, compendiumLists, mcfg)
			if err != nil {
				return err
			}

			w := os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf(T("creating %s: %w"), output, err)
				}
				defer f.Close()
				if err := po.Write(f, merged, po.WriteOptions{}); err != nil {
					return err
				}
			} else if err := po.Write(w, merged, po.WriteOptions{}); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, T("%d merged, %d fuzzied, %d missing, %d obsolete")+"\n",
				stats.Merged, stats.Fuzzied, stats.Missing, stats.Obsolete)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", T("Write merged catalog to this file instead of stdout"))
	cmd.Flags().StringArrayVar(&compendiums, "compendium", nil, T("Additional compendium PO file consulted for fuzzy matches (repeatable)"))
	cmd.Flags().BoolVar(&useFuzzy, "fuzzy-matching", true, T("Search for a fuzzy match when no exact msgid match exists"))
	cmd.Flags().BoolVar(&keepPrevious, "previous", false, T("Keep the previous msgid/msgctxt as '#|' comments on fuzzy matches"))
	cmd.Flags().BoolVar(&forMsgfmt, "for-msgfmt", false, T("Strip untranslated, fuzzy, and obsolete entries from the output"))
	cmd.Flags().BoolVar(&multiDomain, "multi-domain", false, T("Apply the reference's first domain to every definitions domain"))
	cmd.Flags().StringVar(&catalogName, "catalogname", "", T("Override the merged header's Language field"))

	return cmd
}

// ---------------------------------------------------------------------------
// msgfmt-check
// ---------------------------------------------------------------------------

func newMsgfmtCheckCmd() *cobra.Command {
	var checks []string

	cmd := &cobra.Command{
		Use:   "msgfmt-check <file.po>",
		Short: T("Check a catalog's format-string and syntax conformance"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dl, counter, err := po.ParseFile(args[0], po.ParseReaderOptions{})
			if err != nil {
				return fmt.Errorf(T("reading %s: %w"), args[0], err)
			}
			for _, d := range counter.Diagnostics {
				fmt.Fprintln(os.Stderr, d.Error())
			}

			problems := 0
			for _, d := range dl.Domains {
				for _, e := range d.Entries {
					if e.Obsolete || e.IsHeader() {
						continue
					}
					problems += checkEntryFormat(args[0], e)
					_, counted := synlint.Run(e.MsgID, checks)
					for check, n := range counted {
						if n > 0 {
							fmt.Fprintf(os.Stderr, T("%s: msgid %q: %d %s finding(s)\n"), args[0], e.MsgID, n, check)
							problems += n
						}
					}
				}
			}

			if counter.Fatal() || problems > 0 {
				return fmt.Errorf(T("%d problem(s) found"), problems)
			}
			fmt.Fprintln(os.Stderr, T("OK"))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&checks, "check", nil, T("Syntax check to run (repeatable; default: run every check)"))
	return cmd
}

func checkEntryFormat(file string, e *po.Entry) int {
	problems := 0
	for dialectName, state := range e.FormatFlags {
		if state != po.TriYes {
			continue
		}
		dialect, ok := format.Lookup(dialectName)
		if !ok {
			continue
		}
		refVec, err := dialect.Parse(e.MsgID)
		if err != nil {
			continue
		}
		msgstrs := e.MsgStrPlural
		if !e.HasPlural {
			msgstrs = []string{e.MsgStr}
		}
		for _, s := range msgstrs {
			if s == "" {
				continue
			}
			vec, err := dialect.Parse(s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: msgid %q: %s\n", file, e.MsgID, err)
				problems++
				continue
			}
			for _, m := range format.Check(refVec, vec, false) {
				fmt.Fprintf(os.Stderr, "%s: msgid %q: %s\n", file, e.MsgID, m.Detail)
				problems++
			}
		}
	}
	return problems
}

// ---------------------------------------------------------------------------
// msgprintf
// ---------------------------------------------------------------------------

func newMsgprintfCmd() *cobra.Command {
	var argsEachRound int

	cmd := &cobra.Command{
		Use:   "msgprintf <format> [args...]",
		Short: T("Apply a POSIX printf format string against one or more rounds of arguments"),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pieces, err := printf.Parse(args[0])
			if err != nil {
				return err
			}
			res := printf.Run(pieces, argsEachRound, args[1:])
			fmt.Fprint(os.Stdout, res.Output)
			for _, w := range res.Warnings {
				fmt.Fprintln(os.Stderr, T("warning:")+" "+w)
			}
			if res.Failed {
				return fmt.Errorf(T("printf: conversion error"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&argsEachRound, "args-each-round", 0, T("Repeat the format once per N arguments (0 = run once)"))
	return cmd
}

func main() {
	Init("")
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logError(T("%v"), err)
		os.Exit(1)
	}
}
