/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gocardwriter/internal/config"
	"gocardwriter/internal/crash"
	"gocardwriter/internal/domain"
	"gocardwriter/internal/export"
	applog "gocardwriter/internal/log"
	"gocardwriter/internal/paginate"
	"gocardwriter/internal/storage"
	"gocardwriter/internal/style"
	"gocardwriter/internal/stylepack"
	"gocardwriter/internal/version"
)

func usage() {
	fmt.Println("gocardwriter: Markdown to card decks")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gocardwriter version|-v|--version                  Show version")
	fmt.Println("  gocardwriter init <dir> <name>                     Create a new deck at <dir>")
	fmt.Println("  gocardwriter open <dir>                            Open deck at <dir> and print summary")
	fmt.Println("  gocardwriter paginate <dir> [--keep-breaks]        Re-split the deck document into cards")
	fmt.Println("  gocardwriter paginate-file <in.md> [style] [out]   Paginate a loose Markdown file")
	fmt.Println("  gocardwriter cards <dir>                           List cards with estimated heights")
	fmt.Println("  gocardwriter export <dir> [web|print] [fmt,...]    Batch export (pdf, png, zip, html, browser)")
	fmt.Println("  gocardwriter search <dir> <text> [--contains]      Search card text")
	fmt.Println("  gocardwriter validate-style <file>                 Check a style file (json or yaml)")
	fmt.Println("  gocardwriter style-list <dir>                      List the deck's style presets")
	fmt.Println("  gocardwriter style-save <dir> <name>               Save the deck style as a preset")
	fmt.Println("  gocardwriter style-apply <dir> <name>              Switch the deck to a preset")
	fmt.Println("  gocardwriter style-pack <dir> <out.zip>            Bundle the deck's presets")
	fmt.Println("  gocardwriter style-install <dir> <pack.zip>        Install presets from a bundle")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.Init(applog.FromEnv())
		applog.WithComponent("cli").Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	} else {
		applog.Init(cfg.LogOptions())
	}
	l := applog.WithComponent("cli")
	var h *storage.DeckHandle
	defer func() {
		if r := recover(); r != nil {
			crash.Handle(h, r)
		}
	}()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	ctx := applog.ContextWith(context.Background(), slog.String("cmd", args[1]))

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
	case "init":
		need(args, 4, "init requires <dir> and <name>")
		abs, _ := filepath.Abs(args[2])
		deck := domain.NewDeck(args[3])
		if cfg.General.DefaultStyle != "" {
			d, err := style.Load(cfg.General.DefaultStyle)
			fail(l, "load default style", err)
			deck.Style = d
		}
		l.Info("init deck", slog.String("root", abs), slog.String("name", deck.Name))
		h, err = storage.InitDeck(abs, deck)
		fail(l, "init", err)
		fmt.Println("Created deck at", abs)
	case "open":
		need(args, 3, "open requires <dir>")
		h = openDeck(l, args[2])
		if rebuilt, err := storage.DetectAndRebuildIndex(ctx, h); err != nil {
			l.Warn("index check failed", slog.Any("err", err))
		} else if rebuilt {
			fmt.Println("Search index was rebuilt.")
		} else if _, err := storage.RefreshIndex(ctx, h); err != nil {
			l.Warn("index refresh failed", slog.Any("err", err))
		}
		doc, err := storage.ReadDocument(h)
		fail(l, "read document", err)
		box := paginate.ContentBox(h.Deck.Style)
		fmt.Printf("Opened deck: %s\n", h.Deck.Name)
		fmt.Printf("ID: %s\n", h.Deck.ID)
		fmt.Printf("Cards: %d\n", paginate.Count(doc))
		fmt.Printf("Content box: %.0f x %.0f px\n", box.Width, box.Height)
		fmt.Println("Root:", h.Root)
	case "paginate":
		need(args, 3, "paginate requires <dir>")
		h = openDeck(l, args[2])
		opt := paginate.Options{KeepBreaks: hasFlag(args[3:], "--keep-breaks")}
		doc, changed, err := storage.Repaginate(ctx, h, opt)
		fail(l, "paginate", err)
		switch {
		case h.Deck.Style.AutoHeight:
			fmt.Println("Auto-height deck: nothing to paginate.")
		case changed:
			fmt.Printf("Document now has %s.\n", plural(paginate.Count(doc), "card"))
		default:
			fmt.Println("Document already paginated.")
		}
	case "paginate-file":
		need(args, 3, "paginate-file requires <in.md>")
		paginateFile(l, args[2:])
	case "cards":
		need(args, 3, "cards requires <dir>")
		h = openDeck(l, args[2])
		doc, err := storage.ReadDocument(h)
		fail(l, "read document", err)
		listCards(doc, h.Deck.Style)
	case "export":
		need(args, 3, "export requires <dir>")
		h = openDeck(l, args[2])
		opt := export.BatchOptions{
			Preset:     export.PresetName(cfg.Export.Preset),
			OutDir:     cfg.Export.OutDir,
			Scale:      cfg.Export.Scale,
			ChromePath: cfg.Export.ChromePath,
		}
		if len(args) > 3 {
			opt.Preset = export.PresetName(args[3])
		}
		if len(args) > 4 {
			opt.Formats = strings.Split(args[4], ",")
		}
		files, err := export.BatchExport(ctx, h, opt)
		fail(l, "export", err)
		for _, f := range files {
			fmt.Println(f)
		}
	case "search":
		need(args, 4, "search requires <dir> and <text>")
		abs, _ := filepath.Abs(args[2])
		q := storage.SearchQuery{Text: args[3], Contains: hasFlag(args[4:], "--contains")}
		res, err := storage.SearchCards(ctx, abs, q)
		fail(l, "search", err)
		for _, r := range res {
			fmt.Println(formatHit(r))
		}
		if len(res) == 0 {
			fmt.Println("No matches.")
		}
	case "validate-style":
		need(args, 3, "validate-style requires <file>")
		if err := validateStyle(args[2]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("Style is valid.")
	case "style-list":
		need(args, 3, "style-list requires <dir>")
		abs, _ := filepath.Abs(args[2])
		names, err := stylepack.List(abs)
		fail(l, "list styles", err)
		for _, n := range names {
			fmt.Println(n)
		}
	case "style-save":
		need(args, 4, "style-save requires <dir> and <name>")
		h = openDeck(l, args[2])
		path, err := stylepack.SavePreset(h, args[3])
		fail(l, "save style", err)
		fmt.Println("Saved preset to", path)
	case "style-apply":
		need(args, 4, "style-apply requires <dir> and <name>")
		h = openDeck(l, args[2])
		fail(l, "apply style", stylepack.ApplyPreset(h, args[3]))
		fmt.Printf("Applied %s. Run paginate to re-split the document.\n", args[3])
	case "style-pack":
		need(args, 4, "style-pack requires <dir> and <out.zip>")
		abs, _ := filepath.Abs(args[2])
		n, err := stylepack.ExportStyles(abs, args[3])
		fail(l, "pack styles", err)
		fmt.Printf("Packed %s into %s\n", plural(n, "preset"), args[3])
	case "style-install":
		need(args, 4, "style-install requires <dir> and <pack.zip>")
		abs, _ := filepath.Abs(args[2])
		n, err := stylepack.InstallPack(abs, args[3])
		fail(l, "install styles", err)
		fmt.Printf("Installed %s\n", plural(n, "preset"))
	default:
		usage()
		os.Exit(2)
	}
}

// formatHit renders one search result; Position is already the 1-based card
// number.
func formatHit(r storage.SearchResult) string {
	mark := ""
	if r.Overflow {
		mark = " (overflow)"
	}
	return fmt.Sprintf("#%d%s  %s", r.Position, mark, r.Snippet)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func need(args []string, n int, msg string) {
	if len(args) < n {
		fmt.Println(msg)
		usage()
		os.Exit(2)
	}
}

func fail(l *slog.Logger, op string, err error) {
	if err == nil {
		return
	}
	l.Error(op+" failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func openDeck(l *slog.Logger, dir string) *storage.DeckHandle {
	abs, _ := filepath.Abs(dir)
	l.Info("open deck", slog.String("root", abs))
	h, err := storage.Open(abs)
	fail(l, "open", err)
	return h
}

// paginateFile handles <in.md> [style] [out.md]; without out the result goes
// to stdout.
func paginateFile(l *slog.Logger, args []string) {
	data, err := os.ReadFile(args[0])
	fail(l, "read input", err)
	d := style.Defaults()
	if len(args) > 1 && args[1] != "" {
		d, err = style.Load(args[1])
		fail(l, "load style", err)
	}
	if d.AutoHeight {
		fail(l, "paginate", errors.New("style uses autoHeight; cards have no height limit"))
	}
	out := paginate.Paginate(string(data), d)
	if len(args) > 2 {
		fail(l, "write output", os.WriteFile(args[2], []byte(out), 0o644))
		fmt.Printf("Wrote %s to %s\n", plural(paginate.Count(out), "card"), args[2])
		return
	}
	fmt.Println(out)
}

func listCards(doc string, d style.Descriptor) {
	budget := paginate.ContentBox(d).Height
	for i, card := range paginate.Split(doc) {
		first, _, _ := strings.Cut(strings.TrimSpace(card), "\n")
		mark := " "
		if !d.AutoHeight && !paginate.Fits(card, d) {
			mark = "!"
		}
		fmt.Printf("%s %3d  %6.1f / %.0f  %s\n", mark, i+1, paginate.Measure(card, d), budget, first)
	}
}

func validateStyle(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		return style.Validate(data)
	}
	var d style.Descriptor
	if err := style.Decode(data, ext, &d); err != nil {
		return err
	}
	return style.ValidateDescriptor(d)
}
