package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dencchi/f1-knowledge-base/internal/models"
	"github.com/Dencchi/f1-knowledge-base/internal/standings"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.Search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.app.Profiles.Overview(r.Context(), s.app.CurrentYear())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	years, err := s.app.Repos.Race.Years(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"seasons": years})
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	kind, err := standings.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.app.Builder.SeasonStandings(r.Context(), kind, year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":      year,
		"kind":      kind,
		"standings": rows,
	})
}

type championResponse struct {
	Year        int                            `json:"year"`
	Driver      *standings.Champion            `json:"driver"`
	Constructor *standings.ConstructorChampion `json:"constructor"`
}

func (s *Server) handleChampion(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	driver, err := s.app.Champions.ChampionOf(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	team, err := s.app.Champions.ConstructorChampionOf(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if driver == nil && team == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no results for season %d", year))
		return
	}
	writeJSON(w, http.StatusOK, championResponse{Year: year, Driver: driver, Constructor: team})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := s.app.Profiles.Calendar(r.Context(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"year": year, "races": entries})
}

func (s *Server) handleSeasonDrivers(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	drivers, err := s.app.Lineups.SeasonDrivers(r.Context(), year, r.URL.Query().Get("sort"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"year": year, "drivers": drivers})
}

func (s *Server) handleRace(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	round, err := pathInt(r, "round")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	detail, err := s.app.Profiles.Race(r.Context(), models.RaceKey{Year: year, Round: round})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleLineup accepts ?year= (default current season) and ?round= to
// view the lineup as of a given round
func (s *Server) handleLineup(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if year == 0 {
		year = s.app.CurrentYear()
	}
	round, err := queryInt(r, "round")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var asOf *models.RaceKey
	if round > 0 {
		asOf = &models.RaceKey{Year: year, Round: round}
	}

	lineup, err := s.app.Lineups.CurrentLineup(r.Context(), chi.URLParam(r, "ref"), year, asOf)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lineup)
}

func (s *Server) handleDriver(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	desc := r.URL.Query().Get("order") == "desc"

	profile, err := s.app.Profiles.Driver(r.Context(), chi.URLParam(r, "ref"), year, desc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleConstructor(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	profile, err := s.app.Profiles.Constructor(r.Context(), chi.URLParam(r, "ref"), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleCircuit(w http.ResponseWriter, r *http.Request) {
	profile, err := s.app.Profiles.Circuit(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
