// Package marketplace scrapes public marketplace search results.
//
// Nothing here knows the markup of a particular site. A platform is
// described entirely by a PlatformConfig: where its search page lives and
// which css selectors pick out the listing cards and their fields. Every
// selector group is an ordered list of fallbacks, the first one that
// produces something wins, so a markup change on a site is fixed by
// adding a selector to the config rather than editing code.
//
// Scraping a search page goes through the usual three steps:
// 1) keyword -> search url 2) url -> html (Fetcher) 3) html -> listings.
// Step 2 is either a plain http client or a headless browser for sites
// that only render results with javascript.
package marketplace
