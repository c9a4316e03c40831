package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dencchi/f1-knowledge-base/internal/config"
	"github.com/Dencchi/f1-knowledge-base/internal/logger"
	"github.com/Dencchi/f1-knowledge-base/internal/service"
	"github.com/Dencchi/f1-knowledge-base/internal/standings"
)

const emptyRaces = `{"MRData":{"limit":"1000","offset":"0","total":"0","RaceTable":{"Races":[]}}}`

var jolpicaFixtures = map[string]string{
	"/circuits.json": `{"MRData":{"limit":"100","offset":"0","total":"1","CircuitTable":{"Circuits":[
		{"circuitId":"monza","circuitName":"Autodromo Nazionale di Monza","Location":{"lat":"45.6156","long":"9.28111","locality":"Monza","country":"Italy"}}]}}}`,
	"/constructors.json": `{"MRData":{"limit":"100","offset":"0","total":"2","ConstructorTable":{"Constructors":[
		{"constructorId":"mclaren","name":"McLaren","nationality":"British"},
		{"constructorId":"red_bull","name":"Red Bull","nationality":"Austrian"}]}}}`,
	"/drivers.json": `{"MRData":{"limit":"100","offset":"0","total":"2","DriverTable":{"Drivers":[
		{"driverId":"ricciardo","permanentNumber":"3","code":"RIC","givenName":"Daniel","familyName":"Ricciardo","dateOfBirth":"1989-07-01","nationality":"Australian"},
		{"driverId":"max_verstappen","permanentNumber":"33","code":"VER","givenName":"Max","familyName":"Verstappen","dateOfBirth":"1997-09-30","nationality":"Dutch"}]}}}`,
	"/2021.json": `{"MRData":{"limit":"100","offset":"0","total":"1","RaceTable":{"season":"2021","Races":[
		{"season":"2021","round":"14","raceName":"Italian Grand Prix","Circuit":{"circuitId":"monza","circuitName":"Autodromo Nazionale di Monza"},
		 "date":"2021-09-12","time":"13:00:00Z","Sprint":{"date":"2021-09-11","time":"14:30:00Z"}}]}}}`,
	"/2021/14/results.json": `{"MRData":{"limit":"1000","offset":"0","total":"2","RaceTable":{"Races":[
		{"season":"2021","round":"14","raceName":"Italian Grand Prix","Circuit":{"circuitId":"monza"},"date":"2021-09-12","Results":[
		 {"number":"3","position":"1","positionText":"1","points":"25","Driver":{"driverId":"ricciardo"},"Constructor":{"constructorId":"mclaren"},"grid":"2","laps":"53","status":"Finished"},
		 {"number":"33","position":"20","positionText":"R","points":"0","Driver":{"driverId":"max_verstappen"},"Constructor":{"constructorId":"red_bull"},"grid":"1","laps":"25","status":"Collision"}]}]}}}`,
	"/2021/14/sprint.json": `{"MRData":{"limit":"1000","offset":"0","total":"1","RaceTable":{"Races":[
		{"season":"2021","round":"14","raceName":"Italian Grand Prix","Circuit":{"circuitId":"monza"},"date":"2021-09-12","SprintResults":[
		 {"number":"33","position":"2","positionText":"2","points":"2","Driver":{"driverId":"max_verstappen"},"Constructor":{"constructorId":"red_bull"},"grid":"3","laps":"18","status":"Finished"}]}]}}}`,
}

func newJolpicaServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range jolpicaFixtures {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Import.RateLimit = 1000
	cfg.Import.Retries = 0
	cfg.Import.CacheTTLSeconds = 0
	return cfg
}

func TestNewUsesMemoryStore(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	require.NotNil(t, a.Repos)
	assert.NotNil(t, a.Search)
	assert.NotNil(t, a.Profiles)
}

func TestNewFailsOnMissingSnapshot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Snapshot = filepath.Join(t.TempDir(), "absent.json")

	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestCurrentYearFollowsClock(t *testing.T) {
	clock := func() time.Time { return time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC) }
	a, err := New(context.Background(), testConfig(t), logger.Discard(), WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, 2019, a.CurrentYear())
}

// TestImportThenQuery runs a Jolpica import into the memory store and reads
// the season back through the query services.
func TestImportThenQuery(t *testing.T) {
	srv := newJolpicaServer(t)
	cfg := testConfig(t)
	cfg.Import.BaseURL = srv.URL

	ctx := context.Background()
	a, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)

	importer, err := a.Importer()
	require.NoError(t, err)

	m, err := importer.Run(ctx, service.ImportOptions{StartYear: 2021, EndYear: 2021, SkipChampionships: true})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count(service.EntityRaces))
	assert.Equal(t, 2, m.Count(service.EntityResults))
	assert.Equal(t, 1, m.Count(service.EntitySprints))

	rows, err := a.Builder.SeasonStandings(ctx, standings.KindDriver, 2021)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ricciardo", rows[0].Ref)
	assert.Equal(t, 25.0, rows[0].Points)
	assert.Equal(t, 2.0, rows[1].Points)

	champion, err := a.Champions.ChampionOf(ctx, 2021)
	require.NoError(t, err)
	require.NotNil(t, champion)
	assert.Equal(t, "ricciardo", champion.Driver.Ref)

	team, err := a.Repos.Constructor.GetByRef(ctx, "mclaren")
	require.NoError(t, err)
	assert.NotEmpty(t, team.HexColor)

	res, err := a.Search.Search(ctx, "Monza")
	require.NoError(t, err)
	require.NotEmpty(t, res.Circuits)
	assert.Equal(t, "monza", res.Circuits[0].Ref)
}
