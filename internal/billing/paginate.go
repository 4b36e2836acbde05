package billing

import "fmt"

// PageSize is the number of family groups shown per page.
const PageSize = 20

// Page is one slice of the sorted group list. Every count refers to groups,
// not to invoices.
type Page struct {
	Groups      []Group `json:"groups"`
	Page        int     `json:"page"`
	PerPage     int     `json:"per_page"`
	TotalGroups int     `json:"total_groups"`
	TotalPages  int     `json:"total_pages"`

	// From and To are the 1-based positions of the first and last group on
	// the page. Both are 0 when there is nothing to show.
	From int `json:"from"`
	To   int `json:"to"`

	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// Paginate slices groups. A page outside [1, TotalPages] is clamped into it;
// perPage < 1 uses PageSize.
func Paginate(groups []Group, page, perPage int) Page {
	if perPage < 1 {
		perPage = PageSize
	}
	total := len(groups)
	totalPages := (total + perPage - 1) / perPage

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	p := Page{
		Groups:      []Group{},
		Page:        page,
		PerPage:     perPage,
		TotalGroups: total,
		TotalPages:  totalPages,
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
	}
	if total == 0 {
		return p
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	p.Groups = groups[start:end]
	p.From = start + 1
	p.To = end
	return p
}

// Summary returns the "showing X–Y of Z" line.
func (p Page) Summary() string {
	return fmt.Sprintf("Affichage %d–%d sur %d", p.From, p.To, p.TotalGroups)
}

// View holds the filter and page the admin is looking at. Changing the
// filter always brings the view back to page 1.
type View struct {
	filter  Filter
	page    int
	perPage int
}

// NewView returns a view on page 1 with no filter.
func NewView() *View {
	return &View{page: 1, perPage: PageSize}
}

// Filter returns the current filter.
func (v *View) Filter() Filter { return v.filter }

// CurrentPage returns the requested page number.
func (v *View) CurrentPage() int { return v.page }

// SetFilter replaces the filter and resets to page 1 when it changed.
func (v *View) SetFilter(f Filter) {
	if f != v.filter {
		v.page = 1
	}
	v.filter = f
}

// SetPage moves to page n. Values below 1 select page 1.
func (v *View) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	v.page = n
}

// Groups filters and groups rows for the current filter, across all pages.
func (v *View) Groups(rows []Row) []Group {
	return GroupFamilies(Apply(rows, v.filter), v.filter)
}

// Render filters, groups and paginates rows for the current state.
func (v *View) Render(rows []Row) Page {
	return Paginate(v.Groups(rows), v.page, v.perPage)
}
