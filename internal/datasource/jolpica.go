package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// JolpicaSourceName identifies the Jolpica (Ergast compatible) API
const JolpicaSourceName = "jolpica"

// DefaultJolpicaURL is the public Ergast mirror
const DefaultJolpicaURL = "http://api.jolpi.ca/ergast/f1"

// maxResultRows covers a full grid in one request
const maxResultRows = 1000

// envelope is the MRData wrapper around every response
type envelope struct {
	MRData struct {
		Limit  string `json:"limit"`
		Offset string `json:"offset"`
		Total  string `json:"total"`

		CircuitTable *struct {
			Circuits []CircuitData `json:"Circuits"`
		} `json:"CircuitTable,omitempty"`
		ConstructorTable *struct {
			Constructors []ConstructorData `json:"Constructors"`
		} `json:"ConstructorTable,omitempty"`
		DriverTable *struct {
			Drivers []DriverData `json:"Drivers"`
		} `json:"DriverTable,omitempty"`
		RaceTable *struct {
			Races []RaceData `json:"Races"`
		} `json:"RaceTable,omitempty"`
		StandingsTable *struct {
			StandingsLists []struct {
				DriverStandings      []DriverStandingData      `json:"DriverStandings"`
				ConstructorStandings []ConstructorStandingData `json:"ConstructorStandings"`
			} `json:"StandingsLists"`
		} `json:"StandingsTable,omitempty"`
	} `json:"MRData"`
}

func (e *envelope) page() (offset, limit, total int) {
	offset, _ = strconv.Atoi(e.MRData.Offset)
	limit, _ = strconv.Atoi(e.MRData.Limit)
	total, _ = strconv.Atoi(e.MRData.Total)
	return offset, limit, total
}

func (e *envelope) races() []RaceData {
	if e.MRData.RaceTable == nil {
		return nil
	}
	return e.MRData.RaceTable.Races
}

// JolpicaClient implements Source for the Jolpica API. Response bodies are
// cached by URL for the lifetime of an import run.
type JolpicaClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	cache      *cache.Cache
	logger     *logrus.Entry
}

// NewJolpicaClient creates a Jolpica client. A zero cacheTTL disables caching.
func NewJolpicaClient(httpClient *RateLimitedHTTPClient, baseURL string, cacheTTL time.Duration, log *logrus.Logger) *JolpicaClient {
	if baseURL == "" {
		baseURL = DefaultJolpicaURL
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	c := &JolpicaClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log.WithField("source", JolpicaSourceName),
	}
	if cacheTTL > 0 {
		c.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

// Name returns the data source name
func (c *JolpicaClient) Name() string {
	return JolpicaSourceName
}

func (c *JolpicaClient) endpoint(path string, params url.Values) string {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, path)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func pageParams(offset, limit int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
}

// get fetches and decodes one endpoint
func (c *JolpicaClient) get(ctx context.Context, path string, params url.Values) (*envelope, error) {
	u := c.endpoint(path, params)

	body, ok := c.cached(u)
	if !ok {
		var err error
		if body, err = c.fetch(ctx, u); err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.SetDefault(u, body)
		}
	} else {
		c.logger.WithField("url", u).Debug("Serving response from cache")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, NewDataSourceError(JolpicaSourceName, ErrCodeInvalidData, "failed to parse response from "+u, err)
	}
	return &env, nil
}

func (c *JolpicaClient) cached(u string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(u)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

func (c *JolpicaClient) fetch(ctx context.Context, u string) ([]byte, error) {
	resp, err := c.httpClient.Get(ctx, u)
	if err != nil {
		return nil, NewDataSourceError(JolpicaSourceName, ErrCodeNetworkError, "failed to fetch "+u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(JolpicaSourceName, ErrCodeNotFound, u, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(JolpicaSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(JolpicaSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(snippet)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDataSourceError(JolpicaSourceName, ErrCodeNetworkError, "failed to read response", err)
	}
	return body, nil
}

// Circuits returns one page of circuits
func (c *JolpicaClient) Circuits(ctx context.Context, offset, limit int) (*Page[CircuitData], error) {
	env, err := c.get(ctx, "circuits", pageParams(offset, limit))
	if err != nil {
		return nil, err
	}
	p := &Page[CircuitData]{}
	p.Offset, p.Limit, p.Total = env.page()
	if t := env.MRData.CircuitTable; t != nil {
		p.Items = t.Circuits
	}
	return p, nil
}

// Constructors returns one page of constructors
func (c *JolpicaClient) Constructors(ctx context.Context, offset, limit int) (*Page[ConstructorData], error) {
	env, err := c.get(ctx, "constructors", pageParams(offset, limit))
	if err != nil {
		return nil, err
	}
	p := &Page[ConstructorData]{}
	p.Offset, p.Limit, p.Total = env.page()
	if t := env.MRData.ConstructorTable; t != nil {
		p.Items = t.Constructors
	}
	return p, nil
}

// Drivers returns one page of drivers
func (c *JolpicaClient) Drivers(ctx context.Context, offset, limit int) (*Page[DriverData], error) {
	env, err := c.get(ctx, "drivers", pageParams(offset, limit))
	if err != nil {
		return nil, err
	}
	p := &Page[DriverData]{}
	p.Offset, p.Limit, p.Total = env.page()
	if t := env.MRData.DriverTable; t != nil {
		p.Items = t.Drivers
	}
	return p, nil
}

// Schedule returns every round of a season
func (c *JolpicaClient) Schedule(ctx context.Context, year int) ([]RaceData, error) {
	env, err := c.get(ctx, strconv.Itoa(year), url.Values{"limit": {"100"}})
	if err != nil {
		return nil, err
	}
	return env.races(), nil
}

func (c *JolpicaClient) raceWith(ctx context.Context, year, round int, kind string) (*RaceData, error) {
	path := fmt.Sprintf("%d/%d/%s", year, round, kind)
	env, err := c.get(ctx, path, url.Values{"limit": {strconv.Itoa(maxResultRows)}})
	if err != nil {
		return nil, err
	}
	races := env.races()
	if len(races) == 0 {
		return nil, nil
	}
	return &races[0], nil
}

// Results returns the race classification of a round
func (c *JolpicaClient) Results(ctx context.Context, year, round int) (*RaceData, error) {
	return c.raceWith(ctx, year, round, "results")
}

// SprintResults returns the sprint classification of a round
func (c *JolpicaClient) SprintResults(ctx context.Context, year, round int) (*RaceData, error) {
	race, err := c.raceWith(ctx, year, round, "sprint")
	if err != nil || race == nil || len(race.SprintResults) == 0 {
		return nil, err
	}
	return race, nil
}

// DriverChampion returns the leader of the final drivers' standings
func (c *JolpicaClient) DriverChampion(ctx context.Context, year int) (*DriverStandingData, error) {
	env, err := c.get(ctx, fmt.Sprintf("%d/driverStandings", year), url.Values{"limit": {"1"}})
	if err != nil {
		return nil, err
	}
	t := env.MRData.StandingsTable
	if t == nil || len(t.StandingsLists) == 0 || len(t.StandingsLists[0].DriverStandings) == 0 {
		return nil, nil
	}
	return &t.StandingsLists[0].DriverStandings[0], nil
}

// ConstructorChampion returns the leader of the final constructors' standings
func (c *JolpicaClient) ConstructorChampion(ctx context.Context, year int) (*ConstructorStandingData, error) {
	env, err := c.get(ctx, fmt.Sprintf("%d/constructorStandings", year), url.Values{"limit": {"1"}})
	if err != nil {
		return nil, err
	}
	t := env.MRData.StandingsTable
	if t == nil || len(t.StandingsLists) == 0 || len(t.StandingsLists[0].ConstructorStandings) == 0 {
		return nil, nil
	}
	return &t.StandingsLists[0].ConstructorStandings[0], nil
}
