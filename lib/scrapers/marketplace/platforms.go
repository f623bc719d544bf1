package marketplace

// DefaultPlatforms returns configs for the marketplaces monitored out of
// the box. Selector lists are ordered newest markup first, older layouts
// are kept as fallbacks since platforms roll out redesigns gradually.
func DefaultPlatforms() []PlatformConfig {
	return []PlatformConfig{
		{
			Name:       "ebay",
			BaseUrl:    "https://www.ebay.com",
			SearchPath: "/sch/i.html?_nkw={query}&_pgn={page}",
			Pages:      2,
			DelayMs:    1500,
			Selectors: Selectors{
				Card:        []string{"li.s-card", "li.s-item", "div.s-item__wrapper"},
				Title:       []string{".s-card__title", ".s-item__title span[role=heading]", ".s-item__title"},
				Price:       []string{".s-card__price", ".s-item__price"},
				Link:        []string{"a.su-link@href", "a.s-item__link@href", "a@href"},
				Image:       []string{"img.s-card__image@src", ".s-item__image-img@src", "img@data-src", "img@src"},
				Seller:      []string{".s-card__seller-info", ".s-item__seller-info-text"},
				Location:    []string{".s-card__location", ".s-item__location", ".s-item__itemLocation"},
				Description: []string{".s-card__subtitle", ".s-item__subtitle"},
				Empty:       []string{".srp-save-null-search", ".s-message__no-results"},
			},
		},
		{
			Name:       "craigslist",
			BaseUrl:    "https://newyork.craigslist.org",
			SearchPath: "/search/sss?query={query}&s={offset}",
			Pages:      1,
			PageSize:   120,
			DelayMs:    2000,
			Selectors: Selectors{
				Card:     []string{"li.cl-static-search-result", "li.cl-search-result", "li.result-row"},
				Title:    []string{".title", ".posting-title .label", "a.result-title"},
				Price:    []string{".price", ".priceinfo", ".result-price"},
				Link:     []string{"a@href"},
				Location: []string{".location", ".meta .location", ".result-hood"},
				Empty:    []string{".cl-search-no-results", ".noresults"},
			},
		},
		{
			Name:       "gumtree",
			BaseUrl:    "https://www.gumtree.com",
			SearchPath: "/search?q={query}&page={page}",
			Pages:      2,
			DelayMs:    2000,
			Selectors: Selectors{
				Card:        []string{"article[data-q=search-result]", "article.listing-maxi", "li.natural"},
				Title:       []string{"[data-q=tile-title]", ".listing-title", "h2"},
				Price:       []string{"[data-testid=price]", ".listing-price", "[itemprop=price]"},
				Link:        []string{"a[data-q=search-result-anchor]@href", "a.listing-link@href", "a@href"},
				Image:       []string{"img@data-src", "img@src"},
				Location:    []string{"[data-q=tile-location]", ".listing-location"},
				Description: []string{"[data-q=tile-description]", ".listing-description"},
				Empty:       []string{"[data-q=no-results]"},
			},
		},
		{
			Name:       "olx",
			BaseUrl:    "https://www.olx.pl",
			SearchPath: "/oferty/q-{query}/?page={page}",
			Pages:      2,
			Render:     RenderBrowser,
			DelayMs:    2500,
			Selectors: Selectors{
				Card:     []string{"div[data-cy=l-card]", "div[data-testid=l-card]", "td.offer"},
				Title:    []string{"[data-cy=ad-card-title] h4", "h6", "h4", "h3 strong"},
				Price:    []string{"p[data-testid=ad-price]", ".price strong"},
				Link:     []string{"a@href"},
				Image:    []string{"img@src"},
				Location: []string{"p[data-testid=location-date]", ".bottom-cell .breadcrumb span"},
				Empty:    []string{"[data-testid=empty-results]", ".emptynew"},
			},
		},
		{
			Name:       "mercadolibre",
			BaseUrl:    "https://listado.mercadolibre.com.mx",
			SearchPath: "/{query}_Desde_{offset}",
			Pages:      2,
			PageSize:   50,
			DelayMs:    2000,
			Selectors: Selectors{
				Card:     []string{"li.ui-search-layout__item", "div.ui-search-result__wrapper", "div.poly-card"},
				Title:    []string{".poly-component__title", "h2.ui-search-item__title", "h3"},
				Price:    []string{".poly-price__current .andes-money-amount", ".andes-money-amount", ".price-tag"},
				Link:     []string{"a.poly-component__title@href", "a.ui-search-link@href", "a@href"},
				Image:    []string{"img@data-src", "img@src"},
				Seller:   []string{".poly-component__seller"},
				Location: []string{".ui-search-item__location"},
				Empty:    []string{".ui-search-rescue", ".ui-search-rescue__title"},
			},
		},
		{
			Name:       "marktplaats",
			BaseUrl:    "https://www.marktplaats.nl",
			SearchPath: "/q/{query}/p/{page}/",
			Pages:      2,
			Render:     RenderBrowser,
			DelayMs:    2500,
			Selectors: Selectors{
				Card:        []string{"li.hz-Listing", "li.mp-Listing"},
				Title:       []string{".hz-Listing-title", ".mp-Listing-title"},
				Price:       []string{".hz-Listing-price", ".mp-Listing-price"},
				Link:        []string{"a.hz-Link@href", "a.hz-Listing-coverLink@href", "a@href"},
				Image:       []string{"img@src"},
				Seller:      []string{".hz-Listing-seller-name", ".mp-Listing-seller-name"},
				Location:    []string{".hz-Listing-location", ".mp-Listing-location"},
				Description: []string{".hz-Listing-description", ".mp-Listing-description"},
				Empty:       []string{".hz-NoResults", ".mp-NoResults"},
			},
		},
	}
}
