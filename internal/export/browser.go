/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	applog "gocardwriter/internal/log"
	"gocardwriter/internal/storage"
)

// BrowserOptions controls the headless Chrome exporter.
//   - ChromePath: browser binary; empty uses GCW_CHROME_PATH, then the
//     chromedp lookup
//   - Scale: device pixel ratio of the capture; 1 when <= 0
//   - Timeout: whole-run limit; 60s when zero
type BrowserOptions struct {
	ChromePath string
	Scale      float64
	Cards      []int
	Timeout    time.Duration
}

// ExportBrowserPNG loads the deck's HTML page into headless Chrome and
// screenshots every card element. Unlike ExportPNG this uses the real layout
// engine, so fonts, images and CJK text render exactly as in a browser.
func ExportBrowserPNG(ctx context.Context, h *storage.DeckHandle, outDir string, opt BrowserOptions) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "browser_png")
	html, err := RenderHTML(h)
	if err != nil {
		return nil, err
	}
	logCtx := applog.ContextWith(ctx, slog.String("deck", h.Root))
	cards, err := loadCards(h)
	if err != nil {
		return nil, err
	}
	outDir = resolveOut(h, outDir)
	if err := ensureDir(outDir); err != nil {
		return nil, err
	}

	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	chromePath := opt.ChromePath
	if chromePath == "" {
		chromePath = os.Getenv("GCW_CHROME_PATH")
	}
	if chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	bctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	bctx, tcancel := context.WithTimeout(bctx, timeout)
	defer tcancel()

	actions := []chromedp.Action{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	selected := selectCards(cards, opt.Cards)
	bufs := make([][]byte, len(selected))
	for i, c := range selected {
		sel := fmt.Sprintf("#card-%d", c.Number)
		actions = append(actions, chromedp.ScreenshotScale(sel, scale, &bufs[i], chromedp.ByQuery))
	}
	if err := chromedp.Run(bctx, actions...); err != nil {
		return nil, fmt.Errorf("browser capture: %w", err)
	}

	files := make([]string, 0, len(selected))
	for i, c := range selected {
		name := filepath.Join(outDir, CardFileName(c.Number, "png"))
		if err := os.WriteFile(name, bufs[i], 0o644); err != nil {
			return files, fmt.Errorf("write png: %w", err)
		}
		files = append(files, name)
	}
	l.InfoContext(logCtx, "captured cards", slog.Int("count", len(files)), slog.String("dir", outDir))
	return files, nil
}
