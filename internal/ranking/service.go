package ranking

import (
	"context"

	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
)

// --- API Views ---

// Row is one ranking line of a listing.
type Row struct {
	Position    int          `json:"position"`
	SpeciesID   string       `json:"speciesId"`
	SpeciesName string       `json:"speciesName"`
	Dex         int          `json:"dex"`
	Types       [2]string    `json:"types"`
	Shadow      bool         `json:"shadow"`
	Score       float64      `json:"score"`
	Moveset     []string     `json:"moveset"`
	Summary     move.Summary `json:"summary"`
}

// Listing is one page of a scenario.
type Listing struct {
	Scenario *Scenario `json:"scenario"`
	Page     *Page     `json:"page"`
	Rows     []Row     `json:"rankings"`
}

// EdgeView is a matchup or counter with its result class.
type EdgeView struct {
	SpeciesID   string `json:"speciesId"`
	SpeciesName string `json:"speciesName"`
	Rating      int    `json:"rating"`
	Class       string `json:"class"`
}

// Detail is a single ranking row with everything the detail page renders.
type Detail struct {
	Scenario  *Scenario                `json:"scenario"`
	Row       Row                      `json:"ranking"`
	Moves     *MoveBreakdown           `json:"moves,omitempty"`
	Scores    []float64                `json:"scores"`
	Stats     map[string]float64       `json:"stats,omitempty"`
	Matchups  []EdgeView               `json:"matchups"`
	Counters  []EdgeView               `json:"counters"`
	Breakdown pokemon.MovesetBreakdown `json:"breakdown"`
}

// FormatListing is the navigation data of the site.
type FormatListing struct {
	Formats    []Format `json:"formats"`
	Categories []string `json:"categories"`
}

// --- Service ---

// Service joins stored rankings with the in-memory catalog and profiles.
type Service struct {
	repo *Repository
	data pokemon.Source
}

func NewService(repo *Repository, data pokemon.Source) *Service {
	return &Service{repo: repo, data: data}
}

// Formats lists visible formats and the category list.
func (s *Service) Formats(ctx context.Context) (*FormatListing, error) {
	formats, err := s.repo.VisibleFormats(ctx)
	if err != nil {
		return nil, err
	}
	return &FormatListing{Formats: formats, Categories: Categories}, nil
}

// List renders one page of the scenario selected by (cup, cp, category).
func (s *Service) List(ctx context.Context, cup string, cp int, category string, page, size int) (*Listing, error) {
	scenario, err := s.repo.ResolveScenario(ctx, cup, cp, category)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.ListRankings(ctx, scenario.ID, page, size)
	if err != nil {
		return nil, err
	}

	ds := s.data()
	rows := make([]Row, 0, len(p.Rows))
	for i := range p.Rows {
		row, _, err := s.row(ds, &p.Rows[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return &Listing{Scenario: scenario, Page: p, Rows: rows}, nil
}

// Detail renders the row at position with its edges and move breakdown.
func (s *Service) Detail(ctx context.Context, cup string, cp int, category string, position int) (*Detail, error) {
	scenario, err := s.repo.ResolveScenario(ctx, cup, cp, category)
	if err != nil {
		return nil, err
	}
	r, err := s.repo.GetRanking(ctx, scenario.ID, position)
	if err != nil {
		return nil, err
	}
	ds := s.data()
	row, prof, err := s.row(ds, r)
	if err != nil {
		return nil, err
	}
	breakdown, err := pokemon.Breakdown(ds.Catalog, prof, r.Moveset)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Scenario:  scenario,
		Row:       row,
		Moves:     r.Moves,
		Scores:    r.Scores,
		Stats:     r.Stats,
		Matchups:  make([]EdgeView, 0, len(r.Matchups)),
		Counters:  make([]EdgeView, 0, len(r.Counters)),
		Breakdown: breakdown,
	}
	for _, m := range r.Matchups {
		d.Matchups = append(d.Matchups, edgeView(&m.Opponent, m.Rating))
	}
	for _, c := range r.Counters {
		d.Counters = append(d.Counters, edgeView(&c.Opponent, c.Rating))
	}
	return d, nil
}

func edgeView(opponent *pokemon.Pokemon, rating int) EdgeView {
	return EdgeView{
		SpeciesID:   opponent.SpeciesID,
		SpeciesName: opponent.SpeciesName,
		Rating:      rating,
		Class:       RatingClass(rating),
	}
}

// row needs r.Pokemon preloaded.
func (s *Service) row(ds *pokemon.Dataset, r *Ranking) (Row, *pokemon.Profile, error) {
	prof, err := ds.Store.Get(r.Pokemon.SpeciesID)
	if err != nil {
		return Row{}, nil, err
	}
	summary, err := ds.Catalog.Summarize(r.Moveset)
	if err != nil {
		return Row{}, nil, err
	}
	summary.Fast.Name = pokemon.DisplayName(prof, summary.Fast.MoveID, summary.Fast.Name)
	for i := range summary.Charged {
		summary.Charged[i].Name = pokemon.DisplayName(prof, summary.Charged[i].MoveID, summary.Charged[i].Name)
	}

	return Row{
		Position:    r.Position,
		SpeciesID:   prof.SpeciesID,
		SpeciesName: prof.SpeciesName,
		Dex:         prof.Dex,
		Types:       prof.Types,
		Shadow:      prof.IsShadow(),
		Score:       r.Score,
		Moveset:     r.Moveset,
		Summary:     summary,
	}, prof, nil
}
