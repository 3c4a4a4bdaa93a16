package web

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"review-sentiment/utils"
)

// Page is what one product page yielded.
type Page struct {
	URL     string
	Product string
	Reviews []string
}

// Scraper collects review texts from a product page with a headless browser.
type Scraper struct {
	chromeBin string
	selector  string
	pages     int
	logger    *utils.Logger
	retry     *utils.RetryConfig
	seen      *utils.KeySet
}

// New creates a Scraper that extracts the text of every node matching
// selector, following "next page" links up to pages times.
func New(chromeBin, selector string, pages, maxRetries int, logger *utils.Logger) *Scraper {
	if pages < 1 {
		pages = 1
	}
	return &Scraper{
		chromeBin: chromeBin,
		selector:  selector,
		pages:     pages,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		seen: utils.NewKeySet(),
	}
}

// Scrape loads pageURL and returns its product title and deduplicated review texts.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	chromeBin := s.chromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[scraper] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	page := &Page{URL: pageURL}
	visited := utils.NewKeySet()
	current := pageURL
	for n := 1; n <= s.pages && current != ""; n++ {
		visited.Add(current)
		title, texts, next, err := s.scrapePage(browserCtx, current, n)
		if err != nil {
			if n == 1 {
				return nil, err
			}
			s.logger.Error("[scraper] Page %d failed: %v", n, err)
			break
		}
		if page.Product == "" {
			page.Product = title
		}

		added := 0
		for _, t := range texts {
			t = strings.TrimSpace(t)
			if t == "" || !s.seen.Add(t) {
				continue
			}
			page.Reviews = append(page.Reviews, t)
			added++
		}
		s.logger.Info("[scraper] Page %d: %d new reviews (%d total)", n, added, len(page.Reviews))

		if added == 0 {
			break
		}
		current = followNext(visited, next)
	}
	s.logger.Info("[scraper] Visited %d pages, %d reviews", visited.Size(), len(page.Reviews))

	return page, nil
}

func (s *Scraper) scrapePage(browserCtx context.Context, pageURL string, n int) (string, []string, string, error) {
	var (
		title string
		texts []string
		next  string
	)

	err := s.retry.Do(browserCtx, fmt.Sprintf("scrape-page-%d", n), func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(time.Second),
			chromedp.Evaluate(titleScript, &title),
			chromedp.Evaluate(reviewsScript(s.selector), &texts),
			chromedp.Evaluate(nextPageScript, &next),
		)
	})
	if err != nil {
		return "", nil, "", fmt.Errorf("chromedp page scrape: %w", err)
	}

	return strings.TrimSpace(title), texts, next, nil
}

// followNext returns next unless it is empty or was already visited.
func followNext(visited *utils.KeySet, next string) string {
	next = strings.TrimSpace(next)
	if next == "" || visited.Contains(next) {
		return ""
	}
	return next
}

const titleScript = `
	(function() {
		var el = document.querySelector('#productTitle') ||
		         document.querySelector('[itemprop="name"]') ||
		         document.querySelector('h1');
		return el ? el.innerText : document.title;
	})()
`

func reviewsScript(selector string) string {
	return fmt.Sprintf(`
		(function() {
			var nodes = document.querySelectorAll(%q);
			var out = [];
			for (var i = 0; i < nodes.length; i++) {
				var t = (nodes[i].innerText || '').replace(/\s+/g, ' ').trim();
				if (t) out.push(t);
			}
			return out;
		})()
	`, selector)
}

const nextPageScript = `
	(function() {
		var candidates = [
			document.querySelector('li.a-last a'),
			document.querySelector('a[rel="next"]'),
			document.querySelector('a[aria-label="Next"]'),
			document.querySelector('a[aria-label="Siguiente"]')
		];
		for (var i = 0; i < candidates.length; i++) {
			if (candidates[i] && candidates[i].href) return candidates[i].href;
		}
		return '';
	})()
`

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
