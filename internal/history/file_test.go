package history

import (
	"os"
	"path/filepath"
	"testing"

	"fightiq/ratings/internal/elo"
	"fightiq/ratings/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_TeamRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	records := []models.RatingRecord{
		{Season: 2024, Week: 1, EntityID: "KC", EntityType: models.EntityTeam, Rating: 1511.8815},
		{Season: 2024, Week: 1, EntityID: "BUF", EntityType: models.EntityTeam, Rating: 1488.1185},
		{Season: 2024, Week: 2, EntityID: "KC", EntityType: models.EntityTeam, Rating: 1505.25},
	}

	require.NoError(t, store.SaveTeamHistory(records))

	loaded, err := store.LoadTeamHistory()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, records, loaded)
}

func TestStore_PlayerRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	records := []models.RatingRecord{
		{Season: 2024, Week: 1, EntityID: "P_MAHOMES", EntityType: models.EntityPlayer, Position: models.PositionQB, Rating: 1006.4},
		{Season: 2024, Week: 2, EntityID: "P_KELCE", EntityType: models.EntityPlayer, Position: models.PositionTE, Rating: 998.3},
	}

	require.NoError(t, store.SavePlayerHistory(records))

	loaded, err := store.LoadPlayerHistory()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestStore_MissingFileIsColdStart(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	teams, err := store.LoadTeamHistory()
	require.NoError(t, err)
	assert.Empty(t, teams)

	players, err := store.LoadPlayerHistory()
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestStore_CorruptFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, TeamHistoryFile), []byte("season,week\nnot,numbers\n"), 0o644))

	_, err = store.LoadTeamHistory()
	assert.Error(t, err)
}

func TestStore_SnapshotRestoreMatchesLiveStore(t *testing.T) {
	// Persist a live team store's ledger, reload it into a fresh store,
	// and the ratings must come back bit-identical
	dir := t.TempDir()
	fileStore, err := NewStore(dir)
	require.NoError(t, err)

	live := elo.NewTeamStore(elo.DefaultTeamConfig())
	h1, a1 := 27, 24
	h2, a2 := 17, 31
	live.Update(&models.GameOutcome{Season: 2024, Week: 1, HomeTeam: "KC", AwayTeam: "BUF", HomeScore: &h1, AwayScore: &a1})
	live.Update(&models.GameOutcome{Season: 2024, Week: 2, HomeTeam: "BUF", AwayTeam: "KC", HomeScore: &h2, AwayScore: &a2})

	require.NoError(t, fileStore.SaveTeamHistory(live.Ledger().Records()))

	loaded, err := fileStore.LoadTeamHistory()
	require.NoError(t, err)

	restored := elo.NewTeamStore(elo.DefaultTeamConfig())
	restored.Restore(loaded)

	assert.Equal(t, live.Rating("KC"), restored.Rating("KC"))
	assert.Equal(t, live.Rating("BUF"), restored.Rating("BUF"))
}

func TestStore_SaveReplacesPriorSnapshot(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first := []models.RatingRecord{{Season: 2024, Week: 1, EntityID: "KC", EntityType: models.EntityTeam, Rating: 1510}}
	require.NoError(t, store.SaveTeamHistory(first))

	second := append(first, models.RatingRecord{Season: 2024, Week: 2, EntityID: "KC", EntityType: models.EntityTeam, Rating: 1515})
	require.NoError(t, store.SaveTeamHistory(second))

	loaded, err := store.LoadTeamHistory()
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}
