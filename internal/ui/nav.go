package ui

import (
	"strings"
)

const HomePage = "Home"

// NavItem is a static navigation entry.
type NavItem struct {
	Label string
	Icon  string
	Page  string
}

var navItems = [...]NavItem{
	{Label: "Home", Icon: "home", Page: HomePage},
	{Label: "Health Guide", Icon: "file-text", Page: "Articles"},
	{Label: "News & Maps", Icon: "newspaper", Page: "NewsAndMaps"},
}

// NavItems returns the navigation entries, in display order.
func NavItems() []NavItem {
	items := make([]NavItem, len(navItems))
	copy(items, navItems[:])
	return items
}

type NavLink struct {
	NavItem
	URL    string
	Active bool
}

// Navigation resolves every navigation entry for a page named
// currentPageName. An entry is active when its page identifier equals
// currentPageName exactly.
func Navigation(currentPageName string) []NavLink {
	links := make([]NavLink, 0, len(navItems))
	for _, item := range navItems {
		links = append(links, NavLink{
			NavItem: item,
			URL:     PageURL(item.Page),
			Active:  item.Page == currentPageName,
		})
	}

	return links
}

// PageURL resolves the path of the page identified by page.
func PageURL(page string) string {
	return "/" + strings.ReplaceAll(strings.ToLower(page), " ", "-")
}

// LookupPage returns the navigation entry served at urlPath.
func LookupPage(urlPath string) (NavItem, bool) {
	for _, item := range navItems {
		if PageURL(item.Page) == urlPath {
			return item, true
		}
	}

	return NavItem{}, false
}
