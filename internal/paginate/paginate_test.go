/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paginate

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocardwriter/internal/style"
)

// custom returns the default style with explicit card dimensions.
func custom(width, height float64) style.Descriptor {
	d := style.Defaults()
	d.AspectRatio = style.RatioCustom
	d.Width = width
	d.Height = height
	return d
}

func repeatLines(line string, n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func TestPaginate_EmptyDocumentUnchanged(t *testing.T) {
	for _, d := range []style.Descriptor{style.Defaults(), custom(500, 400), custom(0, 0), custom(300, -50)} {
		assert.Equal(t, "", Paginate("", d))
	}
}

func TestPaginate_ExplicitBreaksWithKeepBreaks(t *testing.T) {
	out := PaginateWith("Page 1\n\n---\n\nPage 2", style.Defaults(), Options{KeepBreaks: true})
	assert.Equal(t, []string{"Page 1", "Page 2"}, Split(out))
}

func TestPaginate_ReflowDropsExistingBreaks(t *testing.T) {
	out := Paginate("Page 1\n\n---\n\nPage 2", style.Defaults())
	assert.Equal(t, "Page 1\n\nPage 2", out)
	assert.Equal(t, 1, Count(out))
}

func TestPaginate_RoundTripOfFittingPages(t *testing.T) {
	pages := []string{
		"# Intro\n\nShort opening paragraph.",
		"## Details\n\n- one\n- two\n- three",
		"> A closing quote.\n\nThanks for reading.",
	}
	out := PaginateWith(Join(pages), style.Defaults(), Options{KeepBreaks: true})
	assert.Equal(t, pages, Split(out))
	// Re-running on its own output is stable.
	assert.Equal(t, out, PaginateWith(out, style.Defaults(), Options{KeepBreaks: true}))
}

func TestPaginate_LongDocumentSplits(t *testing.T) {
	doc := repeatLines("Some text line.", 100)
	out := Paginate(doc, custom(500, 400))
	pages := Split(out)
	require.Greater(t, len(pages), 1)

	// No content is lost or reordered.
	var got []string
	for _, p := range pages {
		got = append(got, strings.Split(p, "\n")...)
	}
	assert.Equal(t, strings.Split(doc, "\n"), got)
}

func TestPaginate_ShortDocumentSinglePage(t *testing.T) {
	doc := "# Title\n\nA single short paragraph.\n"
	out := Paginate(doc, custom(500, 2000))
	assert.Equal(t, 1, Count(out))
	assert.Equal(t, strings.TrimSpace(doc), out)
}

func TestPaginate_MonotonicCapacity(t *testing.T) {
	doc := strings.Join([]string{
		"# Heading", "", repeatLines("Plain text that wraps a little bit on narrow cards.", 12), "",
		"## Sub", "- a", "- b", "- c", "", "> quoted", "", "![img](x.png)", "",
		repeatLines("中文内容测试，中文内容测试。", 6),
	}, "\n")
	prev := -1
	for h := 2000.0; h >= 0; h -= 25 {
		n := Count(Paginate(doc, custom(500, h)))
		if prev >= 0 {
			require.GreaterOrEqualf(t, n, prev, "height %v produced fewer pages than a taller card", h)
		}
		prev = n
	}
}

func TestPaginate_PageCountBoundedByContentLines(t *testing.T) {
	docs := []string{
		"a\n\n\nb\n\n\n",
		"# h\n\n\n\n---\n\n\n",
		repeatLines("x", 7),
		"\n\n\nonly\n\n",
	}
	for _, doc := range docs {
		nonBlank := 0
		for _, l := range strings.Split(doc, "\n") {
			if s := strings.TrimSpace(l); s != "" && s != "---" {
				nonBlank++
			}
		}
		for _, d := range []style.Descriptor{custom(500, 0), custom(-10, -10), custom(500, 40)} {
			pages := Split(Paginate(doc, d))
			assert.LessOrEqualf(t, len(pages), nonBlank, "doc %q", doc)
			for _, p := range pages {
				assert.NotEmptyf(t, p, "empty page for doc %q", doc)
			}
		}
	}
}

func TestPaginate_DegenerateGeometryOneLinePerPage(t *testing.T) {
	out := Paginate("alpha\nbeta\n\ngamma", custom(500, 0))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, Split(out))
}

func TestPaginate_HeadingsAreAtomic(t *testing.T) {
	long := "# " + strings.Repeat("very long heading ", 40)
	doc := repeatLines("filler", 10) + "\n" + long + "\nafter"
	for h := 100.0; h <= 700; h += 50 {
		for _, p := range Split(Paginate(doc, custom(400, h))) {
			if strings.Contains(p, "very long heading") {
				assert.Contains(t, p, strings.TrimSpace(long))
			}
		}
	}
}

func TestPaginate_HeadingOpensPageWithoutTopMargin(t *testing.T) {
	d := custom(500, 0)
	d.FontSize = 10
	// Budget: 0 - 40 - 48 - 12 < 0, so each line is on its own page.
	pages := Layout("intro\n# Title", d, Options{})
	require.Len(t, pages, 2)
	assert.InDelta(t, 10*2.0*1.4+16, pages[1].Height, 1e-9)
}

func TestPaginate_ConcurrentCallsAgree(t *testing.T) {
	doc := repeatLines("Concurrent pagination line.", 80)
	d := custom(500, 500)
	want := Paginate(doc, d)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Paginate(doc, d))
		}()
	}
	wg.Wait()
}

func TestLayout_HeightsWithinBudget(t *testing.T) {
	d := custom(500, 600)
	budget := ContentBox(d).Height
	doc := repeatLines("A line of ordinary prose for the budget check.", 60)
	for i, p := range Layout(doc, d, Options{}) {
		assert.LessOrEqualf(t, p.Height, budget, "page %d", i)
	}
}

func ExamplePaginate() {
	d := style.Defaults()
	d.AspectRatio = style.RatioCustom
	d.Height = 200
	fmt.Println(Count(Paginate("# One\nfirst\n\n# Two\nsecond\n\n# Three\nthird", d)))
	// Output: 3
}
