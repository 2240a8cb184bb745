package platform

// Locator is one candidate location for a field value. An empty Attr reads
// the element's text content, otherwise the named attribute is read.
type Locator struct {
	Selector string
	Attr     string
}

// FieldSelectors holds the ordered candidate locators per product-page field.
// Candidates are tried in declared order; the first non-empty value wins.
type FieldSelectors struct {
	Name  []Locator
	Price []Locator
	Image []Locator
	Brand []Locator
}

// SearchSelectors describes a platform's search surface: the navigation URL
// prefix and the locators applied to each result card.
type SearchSelectors struct {
	URLPrefix string
	Card      string
	Name      []Locator
	Price     []Locator
	Link      Locator
}

// Profile is the full extraction configuration for one platform. Platforms
// are added by table rows here, not by new control flow.
type Profile struct {
	Platform     Platform
	BaseURL      string
	WaitSelector string
	Fields       FieldSelectors
	Search       SearchSelectors
}

var profiles = map[Platform]Profile{
	Amazon: {
		Platform:     Amazon,
		BaseURL:      "https://www.amazon.in",
		WaitSelector: "#productTitle",
		Fields: FieldSelectors{
			Name: []Locator{
				{Selector: "#productTitle"},
			},
			Price: []Locator{
				{Selector: ".a-price-whole"},
				{Selector: ".a-price .a-offscreen"},
				{Selector: "#priceblock_dealprice"},
				{Selector: "#priceblock_ourprice"},
			},
			Image: []Locator{
				{Selector: "#landingImage", Attr: "src"},
				{Selector: "#imgBlkFront", Attr: "src"},
			},
			Brand: []Locator{
				{Selector: "#bylineInfo"},
			},
		},
		Search: SearchSelectors{
			URLPrefix: "https://www.amazon.in/s?k=",
			Card:      "div[data-component-type='s-search-result']",
			Name: []Locator{
				{Selector: "h2 a span"},
				{Selector: "h2 span"},
			},
			Price: []Locator{
				{Selector: ".a-price .a-offscreen"},
				{Selector: ".a-price-whole"},
			},
			Link: Locator{Selector: "h2 a", Attr: "href"},
		},
	},
	Flipkart: {
		Platform:     Flipkart,
		BaseURL:      "https://www.flipkart.com",
		WaitSelector: "h1",
		Fields: FieldSelectors{
			Name: []Locator{
				{Selector: "._35KyD6"},
				{Selector: ".x2Vkpg"},
				{Selector: "h1 span"},
				{Selector: "._4rR01T"},
			},
			Price: []Locator{
				{Selector: "._1_WHN1"},
				{Selector: "._30jeq3"},
				{Selector: "._25b18c"},
			},
			Image: []Locator{
				{Selector: "._396cs4 img", Attr: "src"},
				{Selector: "._2r_T1I img", Attr: "src"},
				{Selector: ".CXW8mj img", Attr: "src"},
			},
		},
		Search: SearchSelectors{
			URLPrefix: "https://www.flipkart.com/search?q=",
			Card:      "a[href*='/p/']",
			Name: []Locator{
				{Selector: "._4rR01T"},
				{Selector: ".s1Q9rs"},
			},
			Price: []Locator{
				{Selector: "._30jeq3"},
			},
			Link: Locator{Attr: "href"},
		},
	},
	Meesho: {
		Platform:     Meesho,
		BaseURL:      "https://www.meesho.com",
		WaitSelector: "h1",
		Fields: FieldSelectors{
			Name: []Locator{
				{Selector: "[data-testid='product-title']"},
				{Selector: ".sc-eDvSVe"},
				{Selector: "h1"},
			},
			Price: []Locator{
				{Selector: "[data-testid='current-price']"},
				{Selector: ".sc-dkzDqf"},
				{Selector: ".ProductPrice__Container-sc-1h6x2c5-0"},
			},
			Image: []Locator{
				{Selector: "[data-testid='product-image']", Attr: "src"},
				{Selector: ".ProductImageCarousel__Image-sc-1d9b7bg-2 img", Attr: "src"},
				{Selector: ".sc-gqjmRU img", Attr: "src"},
			},
		},
		Search: SearchSelectors{
			URLPrefix: "https://www.meesho.com/search?q=",
			Card:      "[data-testid='product-mc-container'] a",
			Name: []Locator{
				{Selector: "[data-testid='product-title']"},
			},
			Price: []Locator{
				{Selector: "[data-testid='current-price']"},
			},
			Link: Locator{Attr: "href"},
		},
	},
}

// ProfileFor returns the extraction profile for a platform
func ProfileFor(p Platform) Profile {
	return profiles[p]
}
