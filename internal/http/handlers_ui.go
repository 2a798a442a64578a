package http

import (
	"net/http"

	"familyassets/internal/core"
	"familyassets/internal/log"
	"familyassets/internal/stats"
	"familyassets/internal/store"
)

// dashboardCategories are the categories with their own summary card.
var dashboardCategories = []core.Category{core.Cash, core.Bank, core.Investment, core.Property}

type (
	categoryOption struct {
		Value    string
		Label    string
		Selected bool
	}

	formView struct {
		Today      string
		Categories []categoryOption
	}

	editView struct {
		Asset      assetRow
		Categories []categoryOption
	}

	summaryCard struct {
		Category core.Category
		Label    string
		Amount   string
		Negative bool
	}

	dashboardView struct {
		Total    string
		Negative bool
		Count    int
		Cards    []summaryCard
		Slices   []stats.Slice
	}

	filterOption struct {
		Value  string
		Label  string
		Active bool
	}

	assetRow struct {
		ID          string
		Name        string
		Type        string
		Label       string
		Amount      string
		AmountPlain string
		Negative    bool
		Description string
		Date        string
	}

	assetListView struct {
		Filter  string
		Filters []filterOption
		Rows    []assetRow
	}

	statsView struct {
		Count   int
		Total   string
		Average string
		Max     string
		Min     string
		HasData bool
	}
)

func categoryOptions(selected core.Category) []categoryOption {
	cats := core.Categories()
	opts := make([]categoryOption, 0, len(cats))
	for _, c := range cats {
		opts = append(opts, categoryOption{Value: string(c), Label: c.Label(), Selected: c == selected})
	}
	return opts
}

func toRow(a core.Asset) assetRow {
	return assetRow{
		ID:          a.ID,
		Name:        a.Name,
		Type:        string(a.Type.Bucket()),
		Label:       a.Type.Label(),
		Amount:      core.FormatAmount(a.Amount),
		AmountPlain: a.Amount.String(),
		Negative:    a.Amount.IsNegative(),
		Description: a.Description,
		Date:        a.Date.String(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index.html", formView{
		Today:      core.DateOf(s.store.Now()).String(),
		Categories: categoryOptions(core.Cash),
	})
}

// handleAddForm renders a fresh add form.
func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "add_form", formView{
		Today:      core.DateOf(s.store.Now()).String(),
		Categories: categoryOptions(core.Cash),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Summary failed", log.FieldError, err.Error())
		writeServerError(w, r, "Could not compute totals")
		return
	}

	view := dashboardView{
		Total:    core.FormatAmount(sum.Totals.Total),
		Negative: sum.Totals.Total.IsNegative(),
		Count:    sum.Extremes.Count,
		Slices:   sum.Distribution,
	}
	for _, c := range dashboardCategories {
		v := sum.Totals.Of(c)
		view.Cards = append(view.Cards, summaryCard{
			Category: c,
			Label:    c.Label(),
			Amount:   core.FormatAmount(v),
			Negative: v.IsNegative(),
		})
	}

	s.render(w, r, "dashboard", view)
}

// handleAssetList renders the list partial. A filter query parameter
// becomes the current filter; without one the current filter is kept.
func (s *Server) handleAssetList(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	filter := snap.Filter
	if raw, ok := r.URL.Query()["filter"]; ok && len(raw) > 0 {
		filter = store.ParseFilter(raw[0])
		if err := s.store.SetFilter(r.Context(), filter); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Set filter failed", log.FieldError, err.Error())
		}
	}
	visible := snap.List(filter)

	view := assetListView{
		Filter: string(filter),
		Rows:   make([]assetRow, 0, len(visible)),
	}
	view.Filters = append(view.Filters, filterOption{Value: string(store.FilterAll), Label: "All", Active: filter == store.FilterAll})
	for _, c := range core.Categories() {
		view.Filters = append(view.Filters, filterOption{Value: string(c), Label: c.Label(), Active: string(filter) == string(c)})
	}
	for _, a := range visible {
		view.Rows = append(view.Rows, toRow(a))
	}

	s.render(w, r, "asset_list", view)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := s.store.Get(id)
	if !ok {
		NotFoundError("Asset not found").Write(w)
		return
	}

	s.render(w, r, "edit_form", editView{
		Asset:      toRow(a),
		Categories: categoryOptions(a.Type),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summary(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Summary failed", log.FieldError, err.Error())
		writeServerError(w, r, "Could not compute statistics")
		return
	}

	ex := sum.Extremes
	s.render(w, r, "stats", statsView{
		Count:   ex.Count,
		Total:   core.FormatAmount(ex.Total),
		Average: core.FormatAmount(ex.Average),
		Max:     core.FormatAmount(ex.Max),
		Min:     core.FormatAmount(ex.Min),
		HasData: ex.Count > 0,
	})
}
