package navbar

import "strings"

type Item struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

type entry struct {
	label string
	page  string
	icon  string
}

var entries = []entry{
	{"Home", "dashboard.html", "home"},
	{"Check In", "qr-scanner.html", "qr"},
	{"Schedule", "schedule.html", "calendar"},
	{"Settings", "settings.html", "settings"},
}

const memberPages = "/pages/member/"

// Items returns the member navigation with the entry whose page appears in
// currentPath marked active.
func Items(currentPath string) []Item {
	out := make([]Item, len(entries))
	for i, e := range entries {
		out[i] = Item{
			Label:  e.label,
			Href:   memberPages + e.page,
			Icon:   e.icon,
			Active: strings.Contains(currentPath, e.page),
		}
	}
	return out
}
