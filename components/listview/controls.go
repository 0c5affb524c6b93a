package listview

// Controls describes the previous/next pagination controls.
type Controls struct {
	Page         int
	Pages        int
	Visible      bool
	PrevDisabled bool
	NextDisabled bool
	PrevPage     int
	NextPage     int
}

// NewControls derives the control state. Controls are hidden for single
// page results and both buttons are disabled while a request is in flight.
func NewControls(page, pages int, loading bool) Controls {
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	c := Controls{
		Page:         page,
		Pages:        pages,
		Visible:      pages > 1,
		PrevDisabled: loading || page <= 1,
		NextDisabled: loading || page >= pages,
		PrevPage:     page - 1,
		NextPage:     page + 1,
	}
	if c.PrevPage < 1 {
		c.PrevPage = 1
	}
	if c.NextPage > pages {
		c.NextPage = pages
	}
	return c
}
