package cli

import (
	"bytes"
	"context"
	"errors"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driving"
)

// mockRetrievalService records the last call and returns canned results.
type mockRetrievalService struct {
	results   []domain.RankedResult
	err       error
	lastQuery string
	lastScope domain.ScopeContext
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, query string, scope domain.ScopeContext,
) ([]domain.RankedResult, error) {
	m.lastQuery = query
	m.lastScope = scope
	return m.results, m.err
}

// mockIngestionService records ingested batches.
type mockIngestionService struct {
	report      driving.IngestReport
	chunk       *domain.Chunk
	regenerated int
	err         error

	lastCollection string
	lastChunks     []domain.Chunk
	lastHash       int64
}

func (m *mockIngestionService) Ingest(
	_ context.Context, collectionID string, chunks []domain.Chunk,
) (driving.IngestReport, error) {
	m.lastCollection = collectionID
	m.lastChunks = chunks
	return m.report, m.err
}

func (m *mockIngestionService) RegenerateKeywords(
	_ context.Context, collectionID string, hash int64,
) (*domain.Chunk, error) {
	m.lastCollection = collectionID
	m.lastHash = hash
	return m.chunk, m.err
}

func (m *mockIngestionService) RegenerateCollection(_ context.Context, collectionID string) (int, error) {
	m.lastCollection = collectionID
	return m.regenerated, m.err
}

// mockCollectionService keeps collections in a map.
type mockCollectionService struct {
	collections map[string]*domain.Collection
	err         error
	lastScope   domain.ScopeContext
}

func newMockCollectionService() *mockCollectionService {
	return &mockCollectionService{collections: make(map[string]*domain.Collection)}
}

func (m *mockCollectionService) Create(_ context.Context, coll *domain.Collection) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.collections[coll.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.collections[coll.ID] = coll
	return nil
}

func (m *mockCollectionService) Get(_ context.Context, id string) (*domain.Collection, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.collections[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *mockCollectionService) List(_ context.Context, scope domain.ScopeContext) ([]domain.Collection, error) {
	m.lastScope = scope
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Collection
	for _, c := range m.collections {
		if scope.Sees(c) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCollectionService) Update(_ context.Context, coll *domain.Collection) error {
	m.collections[coll.ID] = coll
	return m.err
}

func (m *mockCollectionService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.collections[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.collections, id)
	return nil
}

// mockSettingsService serves fixed entries and records Set calls.
type mockSettingsService struct {
	entries     []driving.SettingEntry
	validateErr error
	setErr      error
	saved       *domain.AppSettings
	set         map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Entries() ([]driving.SettingEntry, error) {
	return m.entries, nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	retrieval  *mockRetrievalService
	ingestion  *mockIngestionService
	collection *mockCollectionService
	settings   *mockSettingsService
}

// setupTestServices installs fresh mocks and returns them with a cleanup
// function restoring the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	prev := Services{
		Retrieval:  retrievalService,
		Ingestion:  ingestionService,
		Collection: collectionService,
		Settings:   settingsService,
		Watcher:    configWatcher,
	}

	ts := &testServices{
		retrieval:  &mockRetrievalService{},
		ingestion:  &mockIngestionService{},
		collection: newMockCollectionService(),
		settings:   &mockSettingsService{},
	}
	SetServices(Services{
		Retrieval:  ts.retrieval,
		Ingestion:  ts.ingestion,
		Collection: ts.collection,
		Settings:   ts.settings,
	})

	return ts, func() {
		SetServices(prev)
		resetFlags()
	}
}

// resetFlags restores package-level flag variables to their defaults.
func resetFlags() {
	retrieveCharacter, retrieveSession = "", ""
	retrieveLibraries = nil
	retrieveJSON, retrieveExplain = false, false

	collectionName, collectionDescription = "", ""
	collectionScope = string(domain.ScopeGlobal)
	collectionOwner, collectionLibrary = "", ""
	collectionTriggers = nil
	collectionAlwaysActive = false

	collectionListCharacter, collectionListSession = "", ""
	collectionListLibraries = nil
}

// executeCommand runs rootCmd with args and returns combined output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

var errBoom = errors.New("boom")
